package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"ocamlbrew/internal/config"
	"ocamlbrew/internal/driver"
	"ocamlbrew/internal/logchan"
	"ocamlbrew/internal/pipeline"
	"ocamlbrew/internal/planner"
	"ocamlbrew/internal/record"
	"ocamlbrew/internal/shellenv"
)

// flags collects the raw command-line input; config.Resolve turns it into
// the install plan.
var flags config.Flags

// rootCmd is the single-purpose ocamlbrew command: there are no
// subcommands, one invocation is one bootstrap run.
var rootCmd = &cobra.Command{
	Use:   "ocamlbrew",
	Short: "Bootstrap an OCaml environment from source",
	Long: `ocamlbrew fetches, builds, and installs OCaml from source under a
prefix of your choosing, optionally followed by findlib, opam, and a set of
auxiliary tools installed through opam. All build output is captured in a
log file; progress and prompts stay on the terminal.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

// Execute parses the command line and runs the installer. Every failure
// path exits 1: usage errors, a declined confirmation, and stage failures
// alike.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flags.BaseDir, "base", "b", "", "base installation directory (default $HOME/ocamlbrew)")
	f.StringVarP(&flags.Version, "ocaml-version", "v", "", "OCaml version to install (major.minor.patch)")
	f.StringVarP(&flags.ConfigureFlags, "configure-flags", "c", "", "extra flags for OCaml's configure, \"=\" rewritten to space")
	f.StringVarP(&flags.Patch, "patch", "p", "", "patch file to apply to the OCaml sources")
	f.StringVarP(&flags.Name, "name", "n", "", "custom installation directory name under the base")
	f.StringVarP(&flags.LogFile, "log-file", "l", "", "build log location (default a unique temp file)")

	f.BoolVarP(&flags.All, "all", "a", false, "install OCaml, findlib, opam, and all auxiliary tools")
	f.BoolVarP(&flags.ToolchainOnly, "ocaml-only", "o", false, "install only the OCaml toolchain")
	f.BoolVarP(&flags.WithFindlib, "with-findlib", "f", false, "install OCaml and findlib")
	f.BoolVarP(&flags.WithOpam, "with-opam", "r", false, "install OCaml and opam")
	f.BoolVarP(&flags.FullStack, "full", "x", false, "install OCaml, findlib, opam, and oasis")

	f.StringVarP(&flags.SvnPath, "svn-path", "s", "", "build from this path in the OCaml svn repository")
	f.BoolVarP(&flags.Trunk, "trunk", "t", false, "build the OCaml svn trunk")
	f.StringVarP(&flags.GitURL, "git-url", "g", "", "build from a git clone of this URL")
	f.StringVarP(&flags.GitRevision, "git-revision", "G", "", "revision to check out after cloning (requires -g)")

	f.BoolVarP(&flags.AssumeYes, "yes", "y", false, "answer the final confirmation with yes")

	// Conflicting install-set selectors are a usage error, not last-wins.
	rootCmd.MarkFlagsMutuallyExclusive("all", "ocaml-only", "with-findlib", "with-opam", "full")
	rootCmd.MarkFlagsMutuallyExclusive("svn-path", "trunk", "git-url")
}

func run(cmd *cobra.Command, args []string) error {
	plan, err := config.Resolve(flags)
	if err != nil {
		return err
	}

	ch, err := logchan.Open(plan.LogFile)
	if err != nil {
		return err
	}
	defer ch.Restore()

	if !plan.Components.Resolved {
		if !ch.Interactive() {
			return fmt.Errorf("no install set selected and stdin is not a terminal; pass one of -a, -o, -f, -r, -x")
		}
		if err := planner.Fill(ch, plan); err != nil {
			return err
		}
	}

	planner.Summarize(ch, plan)
	if err := planner.Confirm(ch, plan); err != nil {
		// No real work happened yet: the log has nothing worth keeping.
		ch.Discard()
		return err
	}

	if err := prepare(plan); err != nil {
		return err
	}

	executor := &pipeline.Executor{Console: ch}
	if err := executor.Run(plan, drivers(plan, ch)); err != nil {
		ch.Restore()
		ch.Errorf("The installation failed. The log file %s has the details.", plan.LogFile)
		return err
	}

	executor.Summary()
	saveRecord(ch, plan, executor.Results)
	ch.Say("Done. Add the following line to your shell startup file:")
	ch.Say("  source %s", shellenv.Path(plan.InstallDir()))
	return nil
}

// prepare creates the installation directory skeleton and the shell
// environment file's initial PATH export.
func prepare(plan *config.InstallPlan) error {
	for _, dir := range []string{plan.InstallDir(), plan.BuildDir(), plan.EtcDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return shellenv.Write(shellenv.Path(plan.InstallDir()), plan.BinDir())
}

// drivers wires the component drivers to the plan and the log channel. The
// runner's environment puts the new bin directory first on PATH and
// pre-exports the opam variables, so later components find what the
// earlier ones installed.
func drivers(plan *config.InstallPlan, ch *logchan.Channel) pipeline.Set {
	runner := &driver.Runner{
		Log:    ch.LogWriter(),
		Screen: ch.Screen(),
		Env: []string{
			"PATH=" + plan.BinDir() + string(os.PathListSeparator) + os.Getenv("PATH"),
			"OPAMROOT=" + plan.OpamRoot,
			"OPAMYES=1",
		},
	}
	return pipeline.Set{
		Toolchain: &driver.Toolchain{Plan: plan, Run: runner},
		Findlib:   &driver.Findlib{Plan: plan, Run: runner},
		Opam: &driver.Opam{
			Plan:    plan,
			Run:     runner,
			EnvFile: shellenv.Path(plan.InstallDir()),
		},
		Aux: &driver.OpamPackages{Run: runner},
	}
}

// saveRecord writes the run record. A failure here only warns: the
// installation itself already succeeded.
func saveRecord(ch *logchan.Channel, plan *config.InstallPlan, results []pipeline.Result) {
	components := make(map[string]string, len(results))
	for _, r := range results {
		components[r.Component] = r.Outcome.String()
	}
	run := &record.Run{
		Version:     plan.Version.String(),
		Source:      plan.SourceDescription(),
		Prefix:      plan.InstallDir(),
		LogFile:     plan.LogFile,
		Components:  components,
		CompletedAt: time.Now(),
	}
	path := filepath.Join(plan.EtcDir(), record.FileName)
	if err := record.Save(path, run); err != nil {
		ch.Warnf("Could not write the run record: %v", err)
	}
}
