package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phlp/studeval/internal/config"
	"github.com/phlp/studeval/internal/log"
	"github.com/phlp/studeval/internal/output"
	"github.com/phlp/studeval/internal/ui/styles"
)

var (
	// Global flags
	verbose bool
	quiet   bool
)

// Command group IDs for organizing help output
const (
	GroupGrading = "grading"
	GroupConfig  = "config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "studeval",
	Short: "Check out and grade student repositories",
	Long: `studeval clones numbered student repositories, checks out the
submitted state by tag or deadline and grades them against an
evaluation sheet.

Category commands run inside each repository; their outcome and output
are stored next to the evaluation so grading can be resumed any time.`,
	SilenceUsage:               true,
	SilenceErrors:              true,
	SuggestionsMinimumDistance: 2,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose && quiet {
			return fmt.Errorf("--verbose and --quiet are mutually exclusive")
		}
		ctx := cmd.Context()
		cfg := config.FromContext(ctx)
		styles.Init(cfg.Theme)
		ctx = log.WithLogger(ctx, log.New(os.Stderr, verbose, quiet))
		cmd.SetContext(ctx)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	loadedCfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = config.WithConfig(ctx, &loadedCfg)
	ctx = output.WithPrinter(ctx, output.New(os.Stdout, os.Environ()))
	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "Run 'studeval -h' for help")
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show git operations and commands being executed")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output except errors")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.Version = versionString()
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupGrading, Title: "Grading Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	rootCmd.AddCommand(newPrepareCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newSelectCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newAwardCmd())
	rootCmd.AddCommand(newReportCmd())

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCompletionCmd())
}
