package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"swimat/internal/driver"
	"swimat/internal/observ"
	"swimat/internal/project"
	"swimat/internal/trace"
)

const stdinName = "<stdin>"

var (
	errFmtFailed  = errors.New("fmt: failed to format some files")
	errFmtChanges = errors.New("fmt: formatting changes required")

	warnColor = color.New(color.FgYellow)
)

type fmtFlags struct {
	check   bool
	stdout  bool
	diff    bool
	output  string
	jobs    int
	noCache bool
	ui      string
	paths   string
	indent  int
	tabs    bool
}

func (f fmtFlags) validate() error {
	switch {
	case f.check && f.stdout:
		return errors.New("fmt: --stdout cannot be used with --check")
	case f.check && f.diff, f.stdout && f.diff:
		return errors.New("fmt: --diff cannot be combined with --check or --stdout")
	}
	switch f.output {
	case "text":
	case "json":
		if f.stdout {
			return errors.New("fmt: --stdout is only supported with text output")
		}
	default:
		return fmt.Errorf("fmt: unsupported output format %q", f.output)
	}
	switch f.paths {
	case "", "absolute", "relative", "basename", "auto":
	default:
		return fmt.Errorf("fmt: invalid --path-mode %q (expected absolute|relative|basename|auto)", f.paths)
	}
	return nil
}

func newFmtCmd() *cobra.Command {
	var flags fmtFlags
	cmd := &cobra.Command{
		Use:   "fmt [flags] <path|-> [path...]",
		Short: "Format Swift source files",
		Long: `Format Swift source files in place. Directories are walked recursively.
Use "-" to read from stdin and write the result to stdout.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(cmd, args, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.check, "check", false, "check if files are properly formatted")
	cmd.Flags().BoolVar(&flags.stdout, "stdout", false, "print formatted code to stdout instead of rewriting files")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "print a unified diff instead of rewriting files")
	cmd.Flags().StringVar(&flags.output, "format", "text", "output format (text|json)")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "max parallel files (0=auto)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "do not consult or update the formatting cache")
	cmd.Flags().StringVar(&flags.ui, "ui", "auto", "progress view (auto|on|off)")
	cmd.Flags().StringVar(&flags.paths, "path-mode", "", "how to print file paths (absolute|relative|basename|auto); relative is to the project root")
	cmd.Flags().IntVar(&flags.indent, "indent", 4, "spaces per indentation level (overrides config)")
	cmd.Flags().BoolVar(&flags.tabs, "tabs", false, "indent with tabs (overrides config)")
	return cmd
}

func runFmt(cmd *cobra.Command, args []string, flags fmtFlags) error {
	if err := flags.validate(); err != nil {
		return err
	}
	uiFlag, err := readUIMode(flags.ui)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return err
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	span := trace.Begin(trace.FromContext(cmd.Context()), trace.ScopeDriver, "fmt", 0)
	defer span.End("")
	ctx := trace.WithSpan(cmd.Context(), span)

	opts, err := buildFormatOptions(cmd, args, configPath, flags)
	if err != nil {
		return err
	}
	if timings {
		opts.Timer = observ.NewTimer()
		defer printTimings(cmd.ErrOrStderr(), opts.Timer)
	}

	var results []driver.FormatResult
	if slices.Contains(args, "-") {
		if len(args) != 1 {
			return errors.New(`fmt: "-" cannot be combined with other paths`)
		}
		if !opts.Check && !opts.Stdout && !opts.Diff {
			if flags.output != "text" {
				return errors.New("fmt: formatting stdin requires --check or --diff with json output")
			}
			opts.Stdout = true
		}
		res, err := driver.FormatReader(ctx, cmd.InOrStdin(), stdinName, opts)
		if err != nil {
			return err
		}
		results = []driver.FormatResult{res}
	} else {
		if !flags.noCache {
			cache, cacheErr := driver.OpenDefault("swimat")
			if cacheErr != nil {
				if !quiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s cache disabled: %v\n", warnColor.Sprint("warning:"), cacheErr)
				}
			} else {
				opts.Cache = cache
			}
		}
		useUI := !quiet && flags.output == "text" && !flags.stdout && !flags.diff && shouldUseTUI(uiFlag)
		results, err = formatPaths(ctx, args, opts, useUI)
		if err != nil {
			return err
		}
	}
	span.WithExtra("files", strconv.Itoa(len(results)))

	p := newFmtPrinter(cmd, args, flags.paths, quiet)
	if !quiet {
		p.unbalanced(results)
	}

	var hasErrors, hasChanges bool
	switch flags.output {
	case "text":
		switch {
		case opts.Stdout:
			hasErrors = p.stdout(results)
		case flags.diff:
			hasErrors = p.diff(results)
		default:
			hasErrors, hasChanges = p.text(results, flags.check)
		}
	case "json":
		if err := p.json(results, flags.check); err != nil {
			return err
		}
		hasErrors, hasChanges = summarize(results)
	}

	if hasErrors {
		span.WithExtra("failed", "true")
		return errFmtFailed
	}
	if flags.check && hasChanges {
		return errFmtChanges
	}
	return nil
}

// buildFormatOptions merges the discovered config file with command line
// overrides.
func buildFormatOptions(cmd *cobra.Command, args []string, configPath string, flags fmtFlags) (driver.FormatOptions, error) {
	var (
		cfg project.Config
		err error
	)
	if configPath != "" {
		cfg, err = project.LoadConfig(configPath)
	} else {
		cfg, err = project.Discover(args[0])
	}
	if err != nil {
		return driver.FormatOptions{}, err
	}

	formatOpts := cfg.Options()
	if cmd.Flags().Changed("indent") {
		if flags.indent < 1 || flags.indent > project.MaxIndent {
			return driver.FormatOptions{}, fmt.Errorf("fmt: --indent must be between 1 and %d", project.MaxIndent)
		}
		formatOpts.IndentWidth = flags.indent
		formatOpts.UseTabs = false
	}
	if cmd.Flags().Changed("tabs") {
		formatOpts.UseTabs = flags.tabs
	}

	return driver.FormatOptions{
		Check:      flags.check,
		Stdout:     flags.stdout,
		Diff:       flags.diff,
		Options:    formatOpts,
		Jobs:       flags.jobs,
		Extensions: cfg.Format.Extensions,
		Exclude:    cfg.Format.Exclude,
	}, nil
}

func formatPaths(ctx context.Context, paths []string, opts driver.FormatOptions, useUI bool) ([]driver.FormatResult, error) {
	if !useUI {
		return driver.FormatPaths(ctx, paths, opts)
	}
	files, err := driver.CollectFiles(ctx, paths, opts.Extensions, opts.Exclude)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return driver.FormatPaths(ctx, paths, opts)
	}
	return runFormatWithUI(ctx, "formatting", files, opts)
}
