package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageguard/pageguard/internal/firewall"
	"github.com/pageguard/pageguard/internal/worker"
)

var (
	batchWorkers  int
	batchRate     float64
	batchTimeout  time.Duration
	batchNoCache  bool
	batchNoRobots bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Scan a list of URLs, one scan-only action per line",
	Long: `Batch reads URLs from a file (one per line, # comments allowed) and scans
each one. Every URL is an independent action with the same mode, allow-list
and size rules as a single scan.

Example:
  pageguard batch urls.txt --workers 4`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchWorkers, "workers", 4, "concurrent scan workers")
	batchCmd.Flags().Float64Var(&batchRate, "rate", 2, "max page fetches per second per host")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Second, "dispatch timeout per URL")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "bypass the verdict cache")
	batchCmd.Flags().BoolVar(&batchNoRobots, "no-robots", false, "skip robots.txt checks")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g := newGuard(batchTimeout, batchNoCache, batchNoRobots)
	limiter := worker.NewLimiter(batchRate, 3)

	batch := worker.NewBatch(func(ctx context.Context, url string) (*firewall.Verdict, error) {
		return g.Scan(ctx, url)
	}, batchWorkers, limiter)

	outcomes, err := batch.RunFile(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var safe, blocked, failed int
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			failed++
			fmt.Fprintf(out, "! %-50s %v\n", o.URL, o.Err)
		case o.Verdict.Outcome == firewall.OutcomeBlocked:
			blocked++
			fmt.Fprintf(out, "✗ %-50s %s\n", o.URL, o.Verdict.Reason)
		case o.Verdict.Outcome == firewall.OutcomeSafe:
			safe++
			fmt.Fprintf(out, "✓ %-50s\n", o.URL)
		default:
			failed++
			fmt.Fprintf(out, "! %-50s %s\n", o.URL, o.Verdict.Reason)
		}
	}

	fmt.Fprintf(out, "\n%d scanned: %d safe, %d blocked, %d failed\n", len(outcomes), safe, blocked, failed)
	return nil
}
