package interview

import (
	"fmt"
	"math"
	"strings"
)

// ScoreBand describes what a range of scores means for a criterion.
type ScoreBand struct {
	Range       string `json:"range"       yaml:"range"`
	Description string `json:"description" yaml:"description"`
}

// Criterion is one weighted dimension of a [Rubric].
type Criterion struct {
	Name        string      `json:"name"        yaml:"name"`
	Weight      float64     `json:"weight"      yaml:"weight"`
	Description string      `json:"description" yaml:"description"`
	Guide       []ScoreBand `json:"guide"       yaml:"guide"`
}

// Rubric lists the criteria a single answer in a category is scored against.
type Rubric struct {
	Category string      `json:"category" yaml:"category"`
	Criteria []Criterion `json:"criteria" yaml:"criteria"`
}

// WeightedScore combines criterion scores into one score rounded to a single decimal. Missing criteria count as zero.
func (r Rubric) WeightedScore(scores map[string]float64) float64 {
	var totalWeight, sum float64
	for _, c := range r.Criteria {
		totalWeight += c.Weight
		sum += scores[c.Name] * c.Weight
	}
	if totalWeight <= 0 {
		return 0
	}
	return roundScore(sum / totalWeight)
}

// CriterionNames lists the criteria in rubric order.
func (r Rubric) CriterionNames() []string {
	names := make([]string, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		names = append(names, c.Name)
	}
	return names
}

// Format renders the rubric as scorer instructions.
func (r Rubric) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CATEGORY: %s\n\nEvaluate the candidate's response using these criteria:\n", r.Category)
	for i, c := range r.Criteria {
		fmt.Fprintf(&b, "\n%d. %s (Weight: %.0f%%)\n   %s\n\n   Scoring Guide:\n", i+1, c.Name, c.Weight*100, c.Description) //nolint:mnd // percent.
		for _, band := range c.Guide {
			fmt.Fprintf(&b, "   - %s: %s\n", band.Range, band.Description)
		}
	}
	return b.String()
}

func roundScore(score float64) float64 {
	return math.Round(score*10) / 10 //nolint:mnd // one decimal.
}
