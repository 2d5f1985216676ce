package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pageguard/pageguard/internal/extract"
	"github.com/pageguard/pageguard/internal/firewall"
)

var (
	scanTimeout  time.Duration
	scanNoCache  bool
	scanNoRobots bool
	scanFromFile string
	scanPageURL  string
	scanJSON     bool
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan <url>",
	Short: "Scan a page for unsafe content without sending a query",
	Long: `Scan submits a page to the safety service and reports the verdict. No
free-text query is sent and no generated answer is requested.

Example:
  pageguard scan https://example.com
  pageguard scan --file saved.html --url https://example.com/saved
  pageguard scan https://example.com --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().DurationVar(&scanTimeout, "timeout", 30*time.Second, "dispatch timeout")
	scanCmd.Flags().BoolVar(&scanNoCache, "no-cache", false, "bypass the verdict cache")
	scanCmd.Flags().BoolVar(&scanNoRobots, "no-robots", false, "skip robots.txt checks when fetching the page")
	scanCmd.Flags().StringVar(&scanFromFile, "file", "", "scan a local HTML file instead of fetching a URL")
	scanCmd.Flags().StringVar(&scanPageURL, "url", "", "URL the local file claims to come from (with --file)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print the verdict as JSON")
}

func runScan(cmd *cobra.Command, args []string) error {
	if scanFromFile == "" && len(args) == 0 {
		return fmt.Errorf("provide a URL to scan, or --file for local content")
	}

	if err := actionGate.Acquire(); err != nil {
		return err
	}
	defer actionGate.Release()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g := newGuard(scanTimeout, scanNoCache, scanNoRobots)

	var v *firewall.Verdict
	var err error
	if scanFromFile != "" {
		var page *extract.PageContent
		page, err = extract.NewExtractor(scanTimeout, "pageguard/0.1").FromFile(scanFromFile, scanPageURL)
		if err != nil {
			return err
		}
		v, err = g.ScanPage(ctx, page)
	} else {
		v, err = g.Scan(ctx, args[0])
	}
	if err != nil {
		return err
	}

	return renderVerdict(cmd.OutOrStdout(), v, scanJSON)
}
