// SPDX-License-Identifier: MPL-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/oriolang/modload/internal/app"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug logging and full error chains
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "modload",
		Short: "Inspect the oriolang module loader",
		Long: TitleStyle.Render("modload") + SubtitleStyle.Render(" - inspect the oriolang module loader") + `

modload resolves REQUIRE specifiers the same way the embedded script
runtime does: host capability checks, security policy, candidate
preference fallback, and dependency graph construction all run against
your real configuration.

` + SubtitleStyle.Render("Examples:") + `
  modload resolve registry:stats      Resolve a specifier to its location
  modload graph ./lib/plot.js         Print a module's load order
  modload config show                 Show current configuration`,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/modload/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// newApp assembles the loader from the effective configuration. The
// CLI never materializes module bodies, so no materializer is wired.
func newApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, app.Options{
		ConfigFile: cfgFile,
		Logger:     newCLILogger(),
	})
}

// newCLILogger logs to stderr, at debug level when --verbose is set
// and silently otherwise so command output stays parseable.
func newCLILogger() *log.Logger {
	if verbose {
		return log.NewWithOptions(os.Stderr, log.Options{
			Level:  log.DebugLevel,
			Prefix: "modload",
		})
	}
	return log.New(io.Discard)
}

// reportError prints the troubleshooting article for a loader error,
// when the catalog has one, before the error itself surfaces.
func reportError(a *app.App, err error) error {
	if explained := a.Explain(err); explained != err.Error() {
		fmt.Fprintln(os.Stderr, explained)
	}
	return err
}
