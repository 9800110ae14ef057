package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bopt/internal/driver"
	"bopt/internal/opt"
	"bopt/internal/program"
	"bopt/internal/trace"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize [flags] <program>",
	Short: "Reduce gotos in every method of a program",
	Long: `Optimize rewrites each method to minimize explicit jumps: conditional
branches are inverted toward better fallthrough candidates, and gotos that
lead only to a return are replaced by the return itself.`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

func init() {
	optimizeCmd.Flags().StringP("output", "o", "", "output path (default: overwrite the input)")
	optimizeCmd.Flags().Int("jobs", 0, "parallel workers (0 = GOMAXPROCS)")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = inputPath
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	// bopt.toml supplies defaults; explicit flags win.
	if !cmd.Flags().Changed("jobs") {
		if manifest, ok, err := loadProjectManifest("."); err != nil {
			return err
		} else if ok {
			jobs = manifest.Config.Optimize.Jobs
		}
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	tracer, err := setupTracer(cmd)
	if err != nil {
		return err
	}
	ctx := trace.WithTracer(cmd.Context(), tracer)

	prog, err := loadProgram(inputPath)
	if err != nil {
		return err
	}

	stats, err := driver.Optimize(ctx, prog, driver.Options{Jobs: jobs})
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	if err := writeProgram(outputPath, prog); err != nil {
		return err
	}

	if !quiet {
		colorFlag, _ := cmd.Root().PersistentFlags().GetString("color")
		useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))
		reportMetrics(useColor, stats)
	}
	return nil
}

// setupTracer builds a stderr tracer from the --trace-level flag.
func setupTracer(cmd *cobra.Command) (trace.Tracer, error) {
	levelStr, err := cmd.Root().PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	if level == trace.LevelOff {
		return trace.Nop, nil
	}
	return trace.NewWriter(os.Stderr, level), nil
}

// loadProgram reads a program from disk, picking the format by extension:
// .basm is text assembly, everything else the msgpack container.
func loadProgram(path string) (*program.Program, error) {
	if strings.EqualFold(filepath.Ext(path), ".basm") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		prog, err := program.ParseText(f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return prog, nil
	}
	return program.Load(path)
}

// writeProgram stores a program, picking the format by extension like
// loadProgram.
func writeProgram(path string, p *program.Program) error {
	if strings.EqualFold(filepath.Ext(path), ".basm") {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := program.WriteText(f, p); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
	return program.Store(path, p)
}

// reportMetrics prints the three pass totals under their fixed metric
// names.
func reportMetrics(useColor bool, stats opt.Stats) {
	nameColor := color.New(color.FgCyan)
	valueColor := color.New(color.FgGreen, color.Bold)
	if !useColor {
		nameColor.DisableColor()
		valueColor.DisableColor()
	}

	rows := []struct {
		name  string
		value uint32
	}{
		{driver.MetricGotosReplacedWithReturns, stats.GotosReplacedWithReturns},
		{driver.MetricTrailingMovesRemoved, stats.TrailingMovesRemoved},
		{driver.MetricInvertedConditionalBranches, stats.InvertedConditionalBranches},
	}
	for _, row := range rows {
		fmt.Printf("%s: %s\n", nameColor.Sprint(row.name), valueColor.Sprint(row.value))
	}
}
