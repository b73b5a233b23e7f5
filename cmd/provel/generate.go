package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"provel/internal/diag"
	"provel/internal/diagfmt"
	"provel/internal/driver"
	"provel/internal/observ"
	"provel/internal/prof"
	"provel/internal/runnable"
)

var generateCmd = &cobra.Command{
	Use:   "generate [flags] <manifest.toml>",
	Short: "Generate entry-point wrappers for @runnable functions",
	Long:  `Generate runs the runnable extension over every module of the manifest: wrappers are printed for each @runnable function, and entry-point signatures are checked against the flat-buffer calling convention`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	generateCmd.Flags().String("format", "pretty", "diagnostic output format (pretty|json)")
	generateCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	generateCmd.Flags().String("cache-dir", "", "directory for the generated-unit cache")
	generateCmd.Flags().Bool("disk-cache", false, "enable the generated-unit cache at the default location")
	generateCmd.Flags().Bool("show-mappings", false, "print source mappings after each generated unit")
	generateCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	generateCmd.Flags().Bool("basename", false, "print only file basenames in diagnostics")
	generateCmd.Flags().Bool("no-units", false, "suppress generated unit output, print diagnostics only")
	generateCmd.Flags().String("cpuprofile", "", "write a CPU profile to the given path")
	generateCmd.Flags().String("memprofile", "", "write a heap profile to the given path")
}

var (
	unitHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	summaryOKStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	summaryErrStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
)

func runGenerate(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	cacheDir, err := cmd.Flags().GetString("cache-dir")
	if err != nil {
		return fmt.Errorf("failed to get cache-dir flag: %w", err)
	}
	enableDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	showMappings, err := cmd.Flags().GetBool("show-mappings")
	if err != nil {
		return fmt.Errorf("failed to get show-mappings flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	basename, err := cmd.Flags().GetBool("basename")
	if err != nil {
		return fmt.Errorf("failed to get basename flag: %w", err)
	}
	noUnits, err := cmd.Flags().GetBool("no-units")
	if err != nil {
		return fmt.Errorf("failed to get no-units flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	cpuProfile, err := cmd.Flags().GetString("cpuprofile")
	if err != nil {
		return fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	memProfile, err := cmd.Flags().GetString("memprofile")
	if err != nil {
		return fmt.Errorf("failed to get memprofile flag: %w", err)
	}

	session, err := prof.Start(prof.Options{CPUPath: cpuProfile, MemPath: memProfile})
	if err != nil {
		return err
	}
	defer func() {
		if stopErr := session.Stop(); stopErr != nil {
			fmt.Fprintln(os.Stderr, stopErr)
		}
	}()

	timer := observ.NewTimer()
	phase := timer.Begin("load")
	loaded, err := loadManifest(args[0])
	if err != nil {
		return err
	}
	timer.End(phase, fmt.Sprintf("%d module(s)", len(loaded.World.Modules())))

	var cache *driver.DiskCache
	switch {
	case cacheDir != "":
		cache, err = driver.OpenDiskCacheAt(cacheDir)
	case enableDiskCache:
		cache, err = driver.OpenDiskCache("provel")
	}
	if err != nil {
		return fmt.Errorf("failed to open unit cache: %w", err)
	}

	phase = timer.Begin("generate")
	result, err := driver.RunSuite(cmd.Context(), runnable.PluginSuite(), loaded.World, driver.Options{
		Jobs:           jobs,
		Cache:          cache,
		MaxDiagnostics: maxDiagnostics,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	timer.End(phase, fmt.Sprintf("%d unit(s)", len(result.Units)))

	color := useColor(cmd)
	if !noUnits {
		printUnits(result, loaded, showMappings, color)
	}

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

	if format == "pretty" {
		fmt.Fprintln(os.Stdout, summaryLine(result, true, color))
	}
	if showTimings {
		fmt.Fprint(os.Stderr, timer.Summary())
	}

	if result.Bag.HasErrors() {
		// Suppress cobra usage output on diagnostic errors
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // Silent error - diagnostics already printed
	}
	return nil
}

func printUnits(result *driver.Result, loaded *loadedWorld, showMappings, color bool) {
	for _, gf := range result.Units {
		header := fmt.Sprintf("== %s :: %s (%s) ==", loaded.World.ModuleName(gf.Module), gf.FnName, gf.Unit.Name)
		if color {
			header = unitHeaderStyle.Render(header)
		}
		fmt.Fprintln(os.Stdout, header)
		fmt.Fprint(os.Stdout, gf.Unit.Content)
		if showMappings {
			for _, m := range gf.Unit.Mappings {
				start, end := loaded.Files.Resolve(m.Original)
				fmt.Fprintf(os.Stdout, "  map %d..%d -> %s:%d:%d-%d:%d\n",
					m.Generated.Start, m.Generated.End,
					loaded.Files.Get(m.Original.File).Path,
					start.Line, start.Col, end.Line, end.Col)
			}
		}
		fmt.Fprintln(os.Stdout)
	}
}

// summaryLine renders the one-line run summary. showUnits is false for
// analyzer-only runs, which never produce units.
func summaryLine(result *driver.Result, showUnits, color bool) string {
	errors, warnings := 0, 0
	for _, d := range result.Bag.Items() {
		switch {
		case d.Severity >= diag.SevError:
			errors++
		case d.Severity == diag.SevWarning:
			warnings++
		}
	}
	line := fmt.Sprintf("%d error(s), %d warning(s)", errors, warnings)
	if showUnits {
		line = fmt.Sprintf("%d unit(s) generated, %s", len(result.Units), line)
	}
	if !color {
		return line
	}
	if errors > 0 {
		return summaryErrStyle.Render(line)
	}
	return summaryOKStyle.Render(line)
}
