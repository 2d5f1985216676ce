package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageguard/pageguard/internal/firewall"
	"github.com/pageguard/pageguard/internal/policy"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Probe the safety service and show the effective mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newStore().Load()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Endpoint: %s (%s)\n", s.Endpoint(), s.Environment)
		fmt.Fprintf(out, "Mode:     %s\n", policy.Resolve(s))
		if s.APIKey == "" {
			fmt.Fprintln(out, "API key:  not configured (pageguard config set api_key ...)")
		}

		client := firewall.NewClient(firewall.Config{
			Endpoint: s.Endpoint(),
			APIKey:   s.APIKey,
			Timeout:  10 * time.Second,
		})
		h, err := client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("safety service unavailable: %w", err)
		}

		fmt.Fprintf(out, "Service:  %s (v%s, llm configured: %v, threshold %.2f)\n",
			h.Status, h.Version, h.LLMConfigured, h.SafetyThreshold)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
