package config

import (
	"fmt"
	"os"
	"strings"
)

// Flags mirrors the raw command-line input before resolution. cmd binds
// cobra flags straight onto this struct and hands it to Resolve.
type Flags struct {
	BaseDir        string
	Version        string
	ConfigureFlags string
	Patch          string
	Name           string
	LogFile        string

	// Mutually-exclusive install-set selectors.
	All           bool // -a: everything
	ToolchainOnly bool // -o: just the compiler
	WithFindlib   bool // -f: compiler + findlib
	WithOpam      bool // -r: compiler + opam
	FullStack     bool // -x: compiler + findlib + opam + oasis

	SvnPath     string
	Trunk       bool
	GitURL      string
	GitRevision string

	AssumeYes bool
}

// Built-in defaults. Everything here can be overridden by the YAML profile,
// the environment, and finally the command line, in that order.
const (
	defaultVersion    = "4.14.2"
	defaultSvnRoot    = "https://caml.inria.fr/svn/ocaml"
	defaultFindlibURL = "http://download.camlcity.org/download/findlib-1.9.6.tar.gz"
	defaultOpamURL    = "https://github.com/ocaml/opam/releases/download/2.1.5/opam-full-2.1.5.tar.gz"
)

// Resolve turns raw flag input into a complete InstallPlan. Precedence, low
// to high: built-in defaults, YAML profile, OCAMLBREW_* environment,
// command-line flags. The returned plan is immutable apart from the
// component flags the interactive planner may still have to fill.
func Resolve(fl Flags) (*InstallPlan, error) {
	plan, err := defaultPlan()
	if err != nil {
		return nil, err
	}
	if err := applyProfile(plan); err != nil {
		return nil, err
	}
	if err := applyEnv(plan); err != nil {
		return nil, err
	}
	if err := applyFlags(plan, fl); err != nil {
		return nil, err
	}
	if plan.LogFile == "" {
		f, err := os.CreateTemp("", "ocamlbrew-*.log")
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		plan.LogFile = f.Name()
		_ = f.Close()
	}
	if plan.OpamRoot == "" {
		plan.OpamRoot = plan.InstallDir() + "/.opam"
	}
	return plan, nil
}

func defaultPlan() (*InstallPlan, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}
	version, err := ParseVersion(defaultVersion)
	if err != nil {
		return nil, err
	}
	return &InstallPlan{
		BaseDir:    home + "/ocamlbrew",
		Mode:       ReleaseArchive,
		Version:    version,
		ArchiveURL: releaseURL(version),
		SvnRoot:    defaultSvnRoot,
		BuildTool:  "make",
		FindlibURL: defaultFindlibURL,
		OpamURL:    defaultOpamURL,
	}, nil
}

// releaseURL regenerates the canonical download locator from the major and
// minor version parts.
func releaseURL(v Version) string {
	return fmt.Sprintf("https://caml.inria.fr/pub/distrib/ocaml-%s/ocaml-%s.tar.gz", v.Series(), v)
}

// applyEnv merges OCAMLBREW_* (and OPAMROOT) overrides into the plan,
// between profile values and command-line flags.
func applyEnv(plan *InstallPlan) error {
	if v := os.Getenv("OCAMLBREW_BASE"); v != "" {
		plan.BaseDir = v
	}
	if v := os.Getenv("OCAMLBREW_VERSION"); v != "" {
		version, err := ParseVersion(v)
		if err != nil {
			return fmt.Errorf("OCAMLBREW_VERSION: %w", err)
		}
		plan.Version = version
		plan.ArchiveURL = releaseURL(version)
	}
	if v := os.Getenv("OCAMLBREW_URL"); v != "" {
		plan.ArchiveURL = v
	}
	if v := os.Getenv("OCAMLBREW_SVN_ROOT"); v != "" {
		plan.SvnRoot = v
	}
	if v := os.Getenv("OCAMLBREW_MAKE"); v != "" {
		plan.BuildTool = v
	}
	if v := os.Getenv("OCAMLBREW_CONFIGURE_FLAGS"); v != "" {
		plan.ConfigureFlags = RewriteConfigureFlags(v)
	}
	if v := os.Getenv("OCAMLBREW_PATCH"); v != "" {
		plan.PatchPath = v
	}
	if v := os.Getenv("OCAMLBREW_LOGFILE"); v != "" {
		plan.LogFile = v
	}
	if v := os.Getenv("OCAMLBREW_NAME"); v != "" {
		plan.CustomName = v
	}
	if v := os.Getenv("OCAMLBREW_FINDLIB_URL"); v != "" {
		plan.FindlibURL = v
	}
	if v := os.Getenv("OCAMLBREW_OPAM_URL"); v != "" {
		plan.OpamURL = v
	}
	if v := os.Getenv("OPAMROOT"); v != "" {
		plan.OpamRoot = v
	}
	if v := os.Getenv("OCAMLBREW_OPAM_FLAGS"); v != "" {
		plan.OpamFlags = strings.Fields(v)
	}
	return nil
}

func applyFlags(plan *InstallPlan, fl Flags) error {
	if fl.BaseDir != "" {
		plan.BaseDir = fl.BaseDir
	}
	if fl.Version != "" {
		version, err := ParseVersion(fl.Version)
		if err != nil {
			return err
		}
		plan.Version = version
		plan.ArchiveURL = releaseURL(version)
	}
	if fl.ConfigureFlags != "" {
		plan.ConfigureFlags = RewriteConfigureFlags(fl.ConfigureFlags)
	}
	if fl.Patch != "" {
		plan.PatchPath = fl.Patch
	}
	if fl.Name != "" {
		plan.CustomName = fl.Name
	}
	if fl.LogFile != "" {
		plan.LogFile = fl.LogFile
	}
	if err := applyAcquisition(plan, fl); err != nil {
		return err
	}
	if err := applySelector(plan, fl); err != nil {
		return err
	}
	if fl.AssumeYes {
		plan.AssumeYes = true
	}
	return nil
}

func applyAcquisition(plan *InstallPlan, fl Flags) error {
	sources := 0
	if fl.Trunk {
		sources++
		plan.Mode = SvnTrunk
	}
	if fl.SvnPath != "" {
		sources++
		plan.Mode = SvnPath
		plan.SvnPathName = fl.SvnPath
	}
	if fl.GitURL != "" {
		sources++
		plan.Mode = GitClone
		plan.GitURL = fl.GitURL
	}
	if sources > 1 {
		return fmt.Errorf("choose one source: -t, -s, and -g are mutually exclusive")
	}
	if fl.GitRevision != "" {
		if plan.Mode != GitClone {
			return fmt.Errorf("-G is only meaningful together with -g")
		}
		plan.GitRevision = fl.GitRevision
	}
	return nil
}

// applySelector maps the five install-set selectors onto component flags.
// At most one may be active; cmd enforces this at the flag layer and this
// check covers direct callers. With no selector the components stay
// unresolved for the interactive planner.
func applySelector(plan *InstallPlan, fl Flags) error {
	selectors := 0
	for _, s := range []bool{fl.All, fl.ToolchainOnly, fl.WithFindlib, fl.WithOpam, fl.FullStack} {
		if s {
			selectors++
		}
	}
	if selectors > 1 {
		return fmt.Errorf("install-set selectors -a, -o, -f, -r, -x are mutually exclusive")
	}
	if selectors == 0 {
		return nil
	}

	c := &plan.Components
	switch {
	case fl.All:
		c.Findlib = true
		c.Opam = true
		c.Oasis = true
		c.Utop = true
		c.Batteries = true
		c.OCamlScript = true
	case fl.ToolchainOnly:
		// everything stays false
	case fl.WithFindlib:
		c.Findlib = true
	case fl.WithOpam:
		c.Opam = true
	case fl.FullStack:
		c.Findlib = true
		c.Opam = true
		c.Oasis = true
	}
	c.Resolved = true
	// An explicit selector is batch mode: no confirmation prompt.
	plan.AssumeYes = true
	return nil
}

// RewriteConfigureFlags turns the single configure-flags token into the
// argument list handed to ./configure. Historical quirk, preserved on
// purpose: "=" is rewritten to whitespace before splitting, so
// "prefix=/x optflag=yes" becomes the four tokens [prefix /x optflag yes].
// A flag whose value legitimately contains "=" cannot survive this; the
// original installer behaved the same way.
func RewriteConfigureFlags(s string) []string {
	return strings.Fields(strings.ReplaceAll(s, "=", " "))
}
