// Package pipeline sequences the component drivers in their fixed
// dependency order: toolchain, then findlib, then opam, then each requested
// auxiliary tool. Execution is strictly sequential and fail-fast: the first
// stage error aborts the whole run.
package pipeline

import (
	"fmt"

	"ocamlbrew/internal/config"
)

// Driver is one staged component. Retrieve returns the source root the
// later stages operate on; the stages must run in order and exactly once.
type Driver interface {
	Name() string
	Retrieve() (srcRoot string, err error)
	Build(srcRoot string) error
	Install(srcRoot string) error
}

// PackageInstaller installs auxiliary tools through the package manager in
// a single call, with no separate retrieve/build/install staging.
type PackageInstaller interface {
	InstallPackage(name string) error
}

// Console is the progress-notice slice of the log channel.
type Console interface {
	Say(format string, a ...any)
}

// Outcome is the terminal state of one component within a run.
type Outcome int

const (
	Skipped Outcome = iota
	Succeeded
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "installed"
	case Failed:
		return "FAILED"
	default:
		return "skipped"
	}
}

// Result records what happened to one component. Stage names the failing
// stage when Outcome is Failed.
type Result struct {
	Component string
	Outcome   Outcome
	Stage     string
	Err       error
}

// Set holds the drivers for one run. Drivers for unflagged components are
// simply never invoked.
type Set struct {
	Toolchain Driver
	Findlib   Driver
	Opam      Driver
	Aux       PackageInstaller
}

// Executor runs the pipeline and accumulates per-component results.
type Executor struct {
	Console Console
	Results []Result
}

// Run executes the selected components in order. It returns the first stage
// error; nothing after the failing component is attempted. The caller is
// responsible for the restore-and-report behavior on error.
func (e *Executor) Run(plan *config.InstallPlan, set Set) error {
	if err := e.runStaged(set.Toolchain); err != nil {
		return err
	}

	if plan.Components.Findlib {
		if err := e.runStaged(set.Findlib); err != nil {
			return err
		}
	} else {
		e.skip("findlib")
	}

	if plan.Components.Opam {
		if err := e.runStaged(set.Opam); err != nil {
			return err
		}
	} else {
		e.skip("opam")
	}

	for _, name := range config.AuxToolNames {
		// Auxiliary tools ride on opam; without it they cannot be flagged.
		if !plan.Components.AuxSelected(name) || !plan.Components.Opam {
			e.skip(name)
			continue
		}
		e.Console.Say("Installing %s via opam", name)
		if err := set.Aux.InstallPackage(name); err != nil {
			err = fmt.Errorf("%s: install: %w", name, err)
			e.Results = append(e.Results, Result{Component: name, Outcome: Failed, Stage: "install", Err: err})
			return err
		}
		e.Results = append(e.Results, Result{Component: name, Outcome: Succeeded})
	}
	return nil
}

// runStaged drives one component through retrieve, build, and install,
// threading the source root from retrieve into the later stages.
func (e *Executor) runStaged(d Driver) error {
	name := d.Name()

	e.Console.Say("Retrieving %s", name)
	srcRoot, err := d.Retrieve()
	if err != nil {
		return e.failed(name, "retrieve", err)
	}

	e.Console.Say("Building %s", name)
	if err := d.Build(srcRoot); err != nil {
		return e.failed(name, "build", err)
	}

	e.Console.Say("Installing %s", name)
	if err := d.Install(srcRoot); err != nil {
		return e.failed(name, "install", err)
	}

	e.Results = append(e.Results, Result{Component: name, Outcome: Succeeded})
	return nil
}

func (e *Executor) failed(component, stage string, err error) error {
	err = fmt.Errorf("%s: %s: %w", component, stage, err)
	e.Results = append(e.Results, Result{Component: component, Outcome: Failed, Stage: stage, Err: err})
	return err
}

func (e *Executor) skip(component string) {
	e.Results = append(e.Results, Result{Component: component, Outcome: Skipped})
}

// Summary prints the closing per-component report.
func (e *Executor) Summary() {
	e.Console.Say("Summary:")
	for _, r := range e.Results {
		if r.Outcome == Failed {
			e.Console.Say("  %-12s %s (%s stage)", r.Component+":", r.Outcome, r.Stage)
			continue
		}
		e.Console.Say("  %-12s %s", r.Component+":", r.Outcome)
	}
}
