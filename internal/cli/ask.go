package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	askTimeout  time.Duration
	askNoRobots bool
	askJSON     bool
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <url> <question...>",
	Short: "Ask a question about a page, gated by a safety scan",
	Long: `Ask submits the page together with a free-form question and, when the
content passes the remote safety scan, prints the generated answer.

If settings force scan-only mode (locally or through enterprise policy) the
question is not sent and only the safety verdict is reported.

Example:
  pageguard ask https://example.com "Summarize this page"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().DurationVar(&askTimeout, "timeout", 30*time.Second, "dispatch timeout")
	askCmd.Flags().BoolVar(&askNoRobots, "no-robots", false, "skip robots.txt checks when fetching the page")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the verdict as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := actionGate.Acquire(); err != nil {
		return err
	}
	defer actionGate.Release()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Answers are never cached, so the verdict cache is not offered here.
	g := newGuard(askTimeout, true, askNoRobots)

	query := strings.Join(args[1:], " ")
	v, err := g.Ask(ctx, args[0], query)
	if err != nil {
		return err
	}

	return renderVerdict(cmd.OutOrStdout(), v, askJSON)
}
