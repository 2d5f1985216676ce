// Package cli wires the pageguard commands. Each command is one user action:
// settings are re-read at the start of every action, so a change made through
// `config set` is visible to the next `scan` or `ask` without any restart.
package cli

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pageguard/pageguard/internal/cache"
	"github.com/pageguard/pageguard/internal/extract"
	"github.com/pageguard/pageguard/internal/firewall"
	"github.com/pageguard/pageguard/internal/guard"
	"github.com/pageguard/pageguard/internal/logging"
	"github.com/pageguard/pageguard/internal/settings"
)

var (
	cfgFile string
	verbose bool
)

// actionGate rejects a second user action while one is pending in this
// session. Rejection happens here at the UI boundary; the dispatcher stays
// stateless.
var actionGate guard.Gate

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pageguard",
	Short: "Pageguard - gate page content behind a remote safety scan",
	Long: `Pageguard mediates between page content and the SafeBrowse content-safety
service. It extracts a page, enforces the configured operating mode
(free-form query, scan-only, or enterprise-locked scan-only with a domain
allow-list), and dispatches one bounded request to the remote scanner.

Pageguard performs no detection itself: a page is only ever reported unsafe
when the remote service says so. Transport failures surface as errors, not
as safety verdicts.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("pageguard v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default: $XDG_CONFIG_HOME/pageguard/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

func initLogging() {
	level := "warn"
	if verbose {
		level = "debug"
	}
	logging.Setup(logging.Config{Level: level, Pretty: true})
}

// newStore opens the settings store selected by --config.
func newStore() *settings.Store {
	return settings.NewStore(cfgFile)
}

// newGuard assembles the action orchestrator shared by scan, ask and batch.
func newGuard(timeout time.Duration, noCache, noRobots bool) *guard.Guard {
	userAgent := "pageguard/0.1 (+https://github.com/pageguard/pageguard)"

	opts := []extract.Option{}
	if !noRobots {
		opts = append(opts, extract.WithRobots(userAgent, 10*time.Second))
	}
	extractor := extract.NewExtractor(timeout, userAgent, opts...)

	gopts := []guard.Option{guard.WithTimeout(timeout)}
	if !noCache {
		gopts = append(gopts, guard.WithVerdictCache(cache.NewVerdicts()))
	}
	// PAGEGUARD_API_KEY lets one-off invocations supply a key without
	// persisting it.
	if key := os.Getenv("PAGEGUARD_API_KEY"); key != "" {
		gopts = append(gopts, guard.WithClientFactory(func(s settings.Settings) *firewall.Client {
			return firewall.NewClient(firewall.Config{Endpoint: s.Endpoint(), APIKey: key, Timeout: timeout})
		}))
	}
	return guard.New(newStore(), extractor, gopts...)
}
