package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/muhammadderic/create-mderic-boilerplates/internal/scaffold/config"
	"github.com/muhammadderic/create-mderic-boilerplates/internal/scaffold/core"
	"github.com/muhammadderic/create-mderic-boilerplates/pkg/output"
)

// Version is set at build time via ldflags
var Version = "1.0.0"

// errReported marks an error that has already been written to the user.
var errReported = errors.New("error already reported")

// NewScaffolder builds the scaffolder used by the command. Tests replace it
// to avoid network access.
var NewScaffolder = func(branch string, out, errOut io.Writer) *core.Scaffolder {
	return core.NewScaffolder(branch, out, errOut)
}

type rootOptions struct {
	jsonOutput bool
	minOutput  bool
	quiet      bool
	configPath string
	workDir    string
	explicit   config.Config
}

// RootCmd returns the root command for create-mderic-boilerplates
func RootCmd() *cobra.Command {
	o := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "create-mderic-boilerplates <boilerplate-name>",
		Short: "Scaffold a mderic boilerplate into your current folder",
		Long: `create-mderic-boilerplates clones the boilerplate collection, copies the
named boilerplate into ./backend and removes the temporary clone.

Existing files in the target folder are kept; files with the same name as a
boilerplate file are overwritten.

Examples:
  create-mderic-boilerplates express-api
  create-mderic-boilerplates fastify-api --target api
  create-mderic-boilerplates express-api --exclude node_modules/ --exclude '*.log'
  create-mderic-boilerplates express-api --config scaffold.yaml --json`,
		Version:       Version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args[0])
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVar(&o.jsonOutput, "json", false, "Output as JSON")
	flags.BoolVar(&o.minOutput, "min", false, "Minimal output: one summary line, no progress or hints")
	flags.BoolVarP(&o.quiet, "quiet", "q", false, "Suppress progress output")
	flags.StringVar(&o.configPath, "config", "", "Path to a YAML or TOML config file")
	flags.StringVar(&o.workDir, "dir", "", "Working directory (default: current directory)")
	flags.StringVar(&o.explicit.RepoURL, "repo", "", "Boilerplate collection git URL (default "+core.DefaultRepoURL+")")
	flags.StringVar(&o.explicit.Branch, "branch", "", "Branch to clone (default: remote default branch)")
	flags.StringVar(&o.explicit.TargetDir, "target", "", "Target folder (default "+core.DefaultTargetDir+")")
	flags.StringVar(&o.explicit.StagingDir, "staging", "", "Temporary clone folder (default "+core.DefaultStagingDir+")")
	flags.StringSliceVar(&o.explicit.Exclude, "exclude", nil, "Gitignore-style patterns to skip while copying (repeatable)")

	return rootCmd
}

func (o *rootOptions) formatter(cmd *cobra.Command) *output.Formatter {
	return output.New(o.jsonOutput, o.minOutput, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

func (o *rootOptions) run(cmd *cobra.Command, name string) error {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.LoadConfig(o.configPath)
		if err != nil {
			return o.report(cmd, err)
		}
		cfg = loaded
	}
	opts := cfg.Options(name, o.workDir, o.explicit)

	out := cmd.OutOrStdout()
	gitOut := out
	if o.jsonOutput || o.minOutput {
		// Keep stdout parseable.
		gitOut = cmd.ErrOrStderr()
	}

	s := NewScaffolder(opts.Branch, gitOut, cmd.ErrOrStderr())
	s.Out = out
	s.Quiet = o.quiet || o.jsonOutput || o.minOutput
	s.Decorate = isTerminal(out) && !o.minOutput

	result, err := s.Run(cmd.Context(), opts)
	if err != nil {
		return o.report(cmd, err)
	}

	f := o.formatter(cmd)
	return f.Print(result, func(w io.Writer, data interface{}) {
		if o.quiet {
			return
		}
		target := filepath.Base(result.TargetDir)
		if o.minOutput {
			fmt.Fprintf(w, "%s -> %s (%d files, %s)\n",
				result.Template, target, result.Stats.Files, humanize.Bytes(uint64(result.Stats.Bytes)))
			return
		}
		fmt.Fprintln(w, mark(s.Decorate, "✅", fmt.Sprintf("Boilerplate %q is ready!", result.Template)))
		fmt.Fprintf(w, "   Copied %d files (%s) into %s\n",
			result.Stats.Files, humanize.Bytes(uint64(result.Stats.Bytes)), target)
		fmt.Fprintln(w, mark(s.Decorate, "👉", "Next steps:"))
		fmt.Fprintf(w, "   cd %s\n", output.RelativePath(result.TargetDir, workDirOf(opts)))
		fmt.Fprintln(w, "   npm install")
	})
}

// report writes err to the user and returns errReported so Execute only
// sets the exit code.
func (o *rootOptions) report(cmd *cobra.Command, err error) error {
	f := o.formatter(cmd)
	errs := core.SplitErrors(err)

	if o.jsonOutput {
		details := map[string]interface{}{}
		var nf *core.TemplateNotFoundError
		var cleanupMsgs []string
		for _, e := range errs {
			var ce *core.CleanupError
			if errors.As(e, &ce) {
				cleanupMsgs = append(cleanupMsgs, ce.Error())
			}
			if errors.As(e, &nf) {
				details["available"] = nf.Available
			}
			var scErr *core.ScaffoldError
			if errors.As(e, &scErr) && scErr.Hint != "" {
				details["hint"] = scErr.Hint
			}
		}
		if len(cleanupMsgs) > 0 {
			details["cleanup_errors"] = cleanupMsgs
		}
		f.PrintError(errs[0], details)
		return errReported
	}

	w := cmd.ErrOrStderr()
	decorate := isTerminal(cmd.OutOrStdout()) && !o.minOutput
	for _, e := range errs {
		var nf *core.TemplateNotFoundError
		var ce *core.CleanupError
		switch {
		case errors.As(e, &nf) && o.minOutput:
			fmt.Fprintf(w, "Boilerplate %q not found. Available: %s\n", nf.Name, strings.Join(nf.Available, ", "))
		case errors.As(e, &nf):
			fmt.Fprintln(w, mark(decorate, "❌", fmt.Sprintf("Boilerplate %q not found. Available boilerplates:", nf.Name)))
			for _, name := range nf.Available {
				fmt.Fprintf(w, "- %s\n", name)
			}
		case errors.As(e, &ce):
			fmt.Fprintln(w, mark(decorate, "❌", "Failed to clean up temporary directory: "+o.formatError(ce.Cause)))
		default:
			fmt.Fprintln(w, mark(decorate, "❌", "Failed to scaffold: "+o.formatError(e)))
		}
	}
	return errReported
}

// formatError drops hints in minimal output.
func (o *rootOptions) formatError(err error) string {
	if o.minOutput {
		return err.Error()
	}
	return core.FormatError(err)
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	return ExecuteArgs(os.Args[1:], os.Stdout, os.Stderr)
}

// ExecuteArgs runs the root command with explicit arguments and writers.
func ExecuteArgs(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	cmd := RootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			fmt.Fprintf(stderr, "Run '%s --help' for usage.\n", cmd.Name())
		}
		return 1
	}
	return 0
}

func mark(decorate bool, symbol, msg string) string {
	if decorate {
		return symbol + " " + msg
	}
	return msg
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func workDirOf(opts core.Options) string {
	if opts.WorkDir != "" {
		return opts.WorkDir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return cwd
}
