package catalog

import (
	"fmt"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/myrjola/interviewprep/internal/interview"
	"github.com/spf13/cobra"
	"strings"
)

var Group = &cobra.Group{
	ID:    "catalog",
	Title: "Interview catalog",
}

func init() {
	for _, cmd := range []*cobra.Command{Categories, Rubric, Prompt} {
		cmd.Flags().String("catalog", "", "path to a catalog YAML file, the embedded catalog is used when empty")
	}
	Categories.Flags().String("variant", "", "interview variant, the catalog default when empty")
	Prompt.Flags().String("variant", "", "interview variant, the catalog default when empty")
	Prompt.Flags().String("name", "Alex", "candidate name used in the greeting")
	Prompt.Flags().Bool("first", false, "render the instruction for the first question")
}

func loadCatalog(cmd *cobra.Command) (*interview.Catalog, error) {
	path, err := cmd.Flags().GetString("catalog")
	if err != nil {
		return nil, errors.Wrap(err, "catalog flag")
	}
	catalog, err := interview.LoadCatalog(path)
	if err != nil {
		return nil, errors.Wrap(err, "load catalog")
	}
	return catalog, nil
}

var Categories = &cobra.Command{
	Use:     "categories",
	GroupID: "catalog",
	Short:   "List interview categories",
	Long:    `Lists the categories of an interview variant in the order they are asked`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		variant, err := cmd.Flags().GetString("variant")
		if err != nil {
			return errors.Wrap(err, "variant flag")
		}
		seq, err := catalog.Variant(variant)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "%s (%d questions)\n", seq.Name, seq.Total())
		for i, category := range seq.Categories {
			_, _ = fmt.Fprintf(out, "%2d. %s\n", i+1, category)
		}
		return nil
	},
}

var Rubric = &cobra.Command{
	Use:     "rubric [category]",
	GroupID: "catalog",
	Short:   "Show the scoring rubric of a category",
	Long:    `Shows the weighted criteria and scoring bands used to score answers in a category`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), catalog.Rubric(strings.Join(args, " ")).Format())
		return nil
	},
}

var Prompt = &cobra.Command{
	Use:     "prompt [interview type] [category]",
	GroupID: "catalog",
	Short:   "Render question prompts",
	Long:    `Renders the system prompt and the question instruction sent to the question model`,
	Args:    cobra.MinimumNArgs(2), //nolint:mnd // type and category.
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		var (
			variant, name string
			first         bool
		)
		if variant, err = cmd.Flags().GetString("variant"); err != nil {
			return errors.Wrap(err, "variant flag")
		}
		if name, err = cmd.Flags().GetString("name"); err != nil {
			return errors.Wrap(err, "name flag")
		}
		if first, err = cmd.Flags().GetBool("first"); err != nil {
			return errors.Wrap(err, "first flag")
		}
		seq, err := catalog.Variant(variant)
		if err != nil {
			return err
		}
		interviewType, category := args[0], strings.Join(args[1:], " ")
		system, err := catalog.SystemPrompt(interviewType, seq)
		if err != nil {
			return err
		}
		instruction, err := catalog.BuildPrompt(interviewType, category, name, first)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "--- system ---\n%s\n\n--- instruction ---\n%s\n", system, instruction)
		return nil
	},
}
