package interview

import (
	_ "embed"
	"github.com/myrjola/interviewprep/internal/errors"
	"gopkg.in/yaml.v3"
	"log/slog"
	"os"
	"slices"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Theme guides the questions of one category for one interview type.
type Theme struct {
	Focus   string `json:"focus"   yaml:"focus"`
	Explore string `json:"explore" yaml:"explore"`
}

// InterviewType is a role candidates can practise for.
type InterviewType struct {
	ID          string           `json:"id"          yaml:"id"`
	Title       string           `json:"title"       yaml:"title"`
	Description string           `json:"description" yaml:"description"`
	Position    string           `json:"position"    yaml:"position"`
	Interviewer string           `json:"interviewer" yaml:"interviewer"`
	Themes      map[string]Theme `json:"themes"      yaml:"themes"`
}

// Catalog is the static configuration of interview types, variants and rubrics.
type Catalog struct {
	DefaultVariant string          `yaml:"default_variant"`
	Types          []InterviewType `yaml:"interview_types"`
	Variants       []Sequence      `yaml:"variants"`
	Rubrics        []Rubric        `yaml:"rubrics"`
	DefaultRubric  Rubric          `yaml:"default_rubric"`
}

// DefaultCatalog parses the catalog compiled into the binary.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog from a YAML file. An empty path selects [DefaultCatalog].
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog", slog.String("path", path))
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(ErrInvalidCatalog, err.Error())
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Types) == 0 {
		return errors.Wrap(ErrInvalidCatalog, "no interview types")
	}
	seen := make(map[string]bool)
	for _, t := range c.Types {
		if t.ID == "" || t.Position == "" {
			return errors.Wrap(ErrInvalidCatalog, "interview type needs id and position", slog.String("id", t.ID))
		}
		if seen[t.ID] {
			return errors.Wrap(ErrInvalidCatalog, "duplicate interview type", slog.String("id", t.ID))
		}
		seen[t.ID] = true
	}

	if len(c.Variants) == 0 {
		return errors.Wrap(ErrInvalidCatalog, "no variants")
	}
	clear(seen)
	for _, v := range c.Variants {
		if v.Name == "" || len(v.Categories) == 0 {
			return errors.Wrap(ErrInvalidCatalog, "variant needs id and categories", slog.String("id", v.Name))
		}
		if seen[v.Name] {
			return errors.Wrap(ErrInvalidCatalog, "duplicate variant", slog.String("id", v.Name))
		}
		seen[v.Name] = true
		for i, category := range v.Categories {
			if category == "" || slices.Index(v.Categories, category) != i {
				return errors.Wrap(ErrInvalidCatalog, "variant categories must be unique and non-empty",
					slog.String("id", v.Name), slog.Int("position", i+1))
			}
		}
	}
	if !seen[c.DefaultVariant] {
		return errors.Wrap(ErrInvalidCatalog, "default variant not defined", slog.String("default", c.DefaultVariant))
	}

	for _, r := range append([]Rubric{c.DefaultRubric}, c.Rubrics...) {
		if len(r.Criteria) == 0 {
			return errors.Wrap(ErrInvalidCatalog, "rubric without criteria", slog.String("category", r.Category))
		}
		for _, criterion := range r.Criteria {
			if criterion.Name == "" || criterion.Weight <= 0 {
				return errors.Wrap(ErrInvalidCatalog, "rubric criteria need a name and a positive weight",
					slog.String("category", r.Category), slog.String("criterion", criterion.Name))
			}
		}
	}
	return nil
}

// Type looks up an interview type by id.
func (c *Catalog) Type(id string) (InterviewType, error) {
	for _, t := range c.Types {
		if t.ID == id {
			return t, nil
		}
	}
	return InterviewType{}, errors.Wrap(ErrUnknownInterviewType, "lookup", slog.String("interview_type", id)) //nolint:exhaustruct // zero value.
}

// Variant looks up a variant by name. The empty name selects the default variant.
func (c *Catalog) Variant(name string) (Sequence, error) {
	if name == "" {
		name = c.DefaultVariant
	}
	for _, v := range c.Variants {
		if v.Name == name {
			return Sequence{Name: v.Name, Categories: slices.Clone(v.Categories)}, nil
		}
	}
	return Sequence{}, errors.Wrap(ErrUnknownVariant, "lookup", slog.String("variant", name)) //nolint:exhaustruct // zero value.
}

// VariantNames lists the configured variants in catalog order.
func (c *Catalog) VariantNames() []string {
	names := make([]string, 0, len(c.Variants))
	for _, v := range c.Variants {
		names = append(names, v.Name)
	}
	return names
}

// TypeIDs lists the configured interview types in catalog order.
func (c *Catalog) TypeIDs() []string {
	ids := make([]string, 0, len(c.Types))
	for _, t := range c.Types {
		ids = append(ids, t.ID)
	}
	return ids
}

// Rubric returns the rubric of category, falling back to the default rubric.
func (c *Catalog) Rubric(category string) Rubric {
	for _, r := range c.Rubrics {
		if r.Category == category {
			return r
		}
	}
	return c.DefaultRubric
}

// WithDefaultVariant returns a copy of the catalog whose default variant is name.
func (c *Catalog) WithDefaultVariant(name string) (*Catalog, error) {
	if _, err := c.Variant(name); err != nil {
		return nil, err
	}
	clone := *c
	clone.DefaultVariant = name
	return &clone, nil
}
