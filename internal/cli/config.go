package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pageguard/pageguard/internal/logging"
	"github.com/pageguard/pageguard/internal/settings"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pageguard settings",
	Long: `Manage the persisted pageguard settings.

Settings are a flat key-value file shared by every command. Saving
enterprise_mode=true also persists scan_only=true; enterprise policy cannot
be downgraded by the local scan_only toggle.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := newStore()
		s, err := st.Load()
		if err != nil {
			return err
		}

		// The key itself never leaves the settings file.
		display := s
		display.APIKey = logging.RedactKey(s.APIKey)

		out, err := yaml.Marshal(display)
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", st.Path(), out)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a settings file with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := newStore()
		if _, err := os.Stat(st.Path()); err == nil {
			return fmt.Errorf("settings file already exists: %s", st.Path())
		}

		if err := st.Reset(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", st.Path())
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset all settings to defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := newStore()
		if err := st.Reset(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Reset %s\n", st.Path())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one setting",
	Long: `Set one setting and persist it.

Keys:
  api_key          API key for the safety service
  environment      dev or prod
  scan_only        true or false
  enterprise_mode  true or false (forces scan_only=true)
  allowed_domains  comma-separated hostnames, or "" to clear`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	var p settings.Partial
	switch key {
	case "api_key":
		p.APIKey = &value
	case "environment":
		env := settings.Environment(value)
		if env != settings.EnvDev && env != settings.EnvProd {
			return fmt.Errorf("environment must be dev or prod, got %q", value)
		}
		p.Environment = &env
	case "scan_only":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("scan_only must be true or false, got %q", value)
		}
		p.ScanOnly = &b
	case "enterprise_mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("enterprise_mode must be true or false, got %q", value)
		}
		p.EnterpriseMode = &b
	case "allowed_domains":
		var domains []string
		for _, d := range strings.Split(value, ",") {
			if d = strings.TrimSpace(d); d != "" {
				domains = append(domains, d)
			}
		}
		if domains == nil {
			domains = []string{}
		}
		p.AllowedDomains = &domains
	default:
		return fmt.Errorf("unknown setting %q", key)
	}

	st := newStore()
	if err := st.Save(p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", key)
	return nil
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configResetCmd)
	configCmd.AddCommand(configSetCmd)
}
