package cmd

import (
	"fmt"

	"github.com/corey/pddl/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows the project root, store path and the resolved configuration after layering user and project files.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the user config file with defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.NewLoader(nil).EnsureUserConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", paint(colorGreen, "✓"), path)
		return nil
	},
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	store := cfg.StorePath()
	if store == "" {
		store = paint(colorYellow, "disabled")
	}
	fmt.Fprintf(out, "%s\n", paint(colorBold, "⚡ pddl config"))
	fmt.Fprint(out, field("Root", cfg.Root))
	fmt.Fprint(out, field("Store", store))
	fmt.Fprintf(out, "\n%s", data)
	return nil
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
