package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/docskin/internal/progress"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Customize the pages of a built site",
	Long: `Rewrites every page of the built site: unified header with the color-mode
toggle, font preloads, edit button label and footer note. Pages that were
already customized are left alone, so apply can be re-run safely.`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().String("output", "", "write the customized site here instead of rewriting in place")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.OutputDir = out
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	customizer, err := newCustomizer(cfg, iconSourceFromConfig(cfg), progress.NewReporter(), "")
	if err != nil {
		return err
	}

	report, err := customizer.Apply(ctx)
	if err != nil {
		return fmt.Errorf("customizing site: %w", err)
	}

	target := cfg.OutputDir
	if target == "" {
		target = cfg.SiteDir
	}
	fmt.Printf("Customized %d pages in %s", report.Pages, target)
	if report.Skipped > 0 {
		fmt.Printf(" (%d already customized)", report.Skipped)
	}
	fmt.Println()

	if len(report.Warnings) > 0 {
		fmt.Fprintf(os.Stderr, "%d warnings:\n", len(report.Warnings))
		for _, w := range report.Warnings {
			fmt.Fprintf(os.Stderr, "  %s\n", w)
		}
	}
	return nil
}
