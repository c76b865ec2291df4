package main

import (
	"fmt"
	"github.com/joho/godotenv"
	"github.com/myrjola/interviewprep/cmd/cli/catalog"
	"github.com/myrjola/interviewprep/cmd/cli/practice"
	"github.com/myrjola/interviewprep/internal/errors"
	"github.com/spf13/cobra"
	"io/fs"
	"os"
)

func init() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(catalog.Group)
	rootCmd.AddCommand(catalog.Categories, catalog.Rubric, catalog.Prompt)
	rootCmd.AddGroup(practice.Group)
	rootCmd.AddCommand(practice.Interview, practice.Speak)
}

var rootCmd = &cobra.Command{
	Use:          "interviewprep-cli",
	Long:         `Command line utilities for the dental interview practice service`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
