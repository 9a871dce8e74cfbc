package cli

import (
	"github.com/spf13/cobra"

	"github.com/stlplant/tankview/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or print the settings file",
		Long: `Create or print the settings file.

Settings are read from ~/.config/tankview/config.toml (or --config), then
` + config.EnvAPIURL + `, ` + config.EnvRedisAddr + ` and ` + config.EnvMongoURI + ` override
the file.`,
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default settings file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Init(c.configPath, force)
			if err != nil {
				return err
			}
			printSuccess("Settings written")
			printFile(path)
			printNextStep("Point it at your backend, then pick a customer", appName+" select")
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			return cfg.Write(out)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
