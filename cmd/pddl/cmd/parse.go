package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/corey/pddl/internal/app"
	"github.com/corey/pddl/internal/domain/extract"
	"github.com/corey/pddl/internal/domain/model"
	"github.com/spf13/cobra"
)

var parseLanguage string

var parseCmd = &cobra.Command{
	Use:   "parse <file>...",
	Short: "Parse files and report problems",
	Long: "Parses each file on its own, without a workspace, and prints its kind and problems.\n" +
		"Exits 2 when any file has errors.",
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	parser := extract.NewParser()
	failed := false
	for _, path := range args {
		text, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		lang := parseLanguage
		if lang == "" {
			lang = app.LanguageFor(path)
		}
		info := parser.ParseFile(model.FileMeta{URI: app.FileURI(abs), Language: lang, Version: 1}, string(text))
		fmt.Fprint(cmd.OutOrStdout(), formatProblems(path, info))
		for _, p := range info.Base().Problems() {
			if p.Severity == model.SeverityError {
				failed = true
			}
		}
	}
	if failed {
		return &exitError{code: 2}
	}
	return nil
}

func init() {
	parseCmd.Flags().StringVarP(&parseLanguage, "language", "l", "", "Language tag (pddl, plan, happenings); default from the extension")
}
