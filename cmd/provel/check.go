package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"provel/internal/diagfmt"
	"provel/internal/driver"
	"provel/internal/runnable"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <manifest.toml>",
	Short: "Check entry-point signatures without generating wrappers",
	Long:  `Check runs only the signature analyzer of the runnable extension: every @runnable_raw function is verified against the flat-buffer calling convention`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "diagnostic output format (pretty|json)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("basename", false, "print only file basenames in diagnostics")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	basename, err := cmd.Flags().GetBool("basename")
	if err != nil {
		return fmt.Errorf("failed to get basename flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	loaded, err := loadManifest(args[0])
	if err != nil {
		return err
	}

	// Analyzers only: drop the generator half of the suite.
	suite := runnable.PluginSuite()
	suite.Generators = nil

	result, err := driver.RunSuite(cmd.Context(), suite, loaded.World, driver.Options{
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
	})
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	color := useColor(cmd)
	pathMode := diagfmt.PathModeFull
	if basename {
		pathMode = diagfmt.PathModeBasename
	}
	switch format {
	case "pretty":
		diagfmt.Pretty(os.Stdout, result.Bag, loaded.Files, diagfmt.PrettyOpts{
			Color:     color,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		})
		fmt.Fprintln(os.Stdout, summaryLine(result, false, color))
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			IncludeNotes:     withNotes,
			PathMode:         pathMode,
		}
		if err := diagfmt.JSON(os.Stdout, result.Bag, loaded.Files, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if result.Bag.HasErrors() {
		// Suppress cobra usage output on diagnostic errors
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // Silent error - diagnostics already printed
	}
	return nil
}
