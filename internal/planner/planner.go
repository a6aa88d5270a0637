// Package planner fills in the install plan's component flags when no
// install-set selector was given on the command line, by asking a fixed
// sequence of yes/no questions on the interactive channel.
package planner

import (
	"errors"
	"strings"

	"ocamlbrew/internal/config"
)

// Console is the slice of the log channel the planner needs: progress
// notices that also land in the log, and prompts that never do.
type Console interface {
	Say(format string, a ...any)
	Prompt(msg string) (string, error)
}

// ErrDeclined is returned when the user answers the final confirmation with
// anything but yes. The caller must delete the log file and exit non-zero
// without running any component.
var ErrDeclined = errors.New("installation cancelled")

// Fill asks the component questions in their fixed nested order. Answering
// no to findlib resolves everything downstream to false without asking;
// answering no to opam does the same for the auxiliary tools. The four
// auxiliary questions are independent of each other.
func Fill(con Console, plan *config.InstallPlan) error {
	if plan.Components.Resolved {
		return nil
	}
	c := &plan.Components

	var err error
	if c.Findlib, err = askYes(con, "Install findlib (the library manager)?"); err != nil {
		return err
	}
	if c.Findlib {
		if c.Opam, err = askYes(con, "Install opam (the package manager)?"); err != nil {
			return err
		}
		if c.Opam {
			if c.Oasis, err = askYes(con, "Install oasis?"); err != nil {
				return err
			}
			if c.Utop, err = askYes(con, "Install utop?"); err != nil {
				return err
			}
			if c.Batteries, err = askYes(con, "Install Batteries?"); err != nil {
				return err
			}
			if c.OCamlScript, err = askYes(con, "Install ocamlscript?"); err != nil {
				return err
			}
		}
	}
	c.Resolved = true
	return nil
}

// Summarize announces exactly what the run is about to do, on both sinks.
func Summarize(con Console, plan *config.InstallPlan) {
	con.Say("Installing OCaml %s from %s", versionLabel(plan), plan.SourceDescription())
	con.Say("Installation prefix: %s", plan.InstallDir())
	con.Say("Build log: %s", plan.LogFile)

	con.Say("Components:")
	con.Say("  ocaml:       yes")
	con.Say("  findlib:     %s", yn(plan.Components.Findlib))
	con.Say("  opam:        %s", yn(plan.Components.Opam))
	for _, name := range config.AuxToolNames {
		con.Say("  %-12s %s", name+":", yn(plan.Components.AuxSelected(name)))
	}
}

// Confirm asks the final go/no-go question unless a batch selector (or -y)
// already answered it. Anything but an affirmative is a decline.
func Confirm(con Console, plan *config.InstallPlan) error {
	if plan.AssumeYes {
		return nil
	}
	yes, err := askYes(con, "Continue?")
	if err != nil {
		return err
	}
	if !yes {
		return ErrDeclined
	}
	return nil
}

// askYes asks one yes/no question. The answer is trimmed and lowercased
// before comparing to "y"; everything else counts as no.
func askYes(con Console, question string) (bool, error) {
	answer, err := con.Prompt(question + " (y/n) ")
	if err != nil {
		return false, err
	}
	return strings.ToLower(strings.TrimSpace(answer)) == "y", nil
}

func yn(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func versionLabel(plan *config.InstallPlan) string {
	if plan.Mode == config.ReleaseArchive {
		return plan.Version.String()
	}
	return "(development checkout)"
}
