package config

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Mode selects how the OCaml sources are acquired.
type Mode int

const (
	// ReleaseArchive downloads and unpacks an official release tarball.
	ReleaseArchive Mode = iota
	// SvnTrunk checks out the development trunk from the Subversion repository.
	SvnTrunk
	// SvnPath checks out a named path (branch or tag) from the Subversion repository.
	SvnPath
	// GitClone clones a Git URL, optionally checking out a specific revision.
	GitClone
)

func (m Mode) String() string {
	switch m {
	case SvnTrunk:
		return "svn trunk"
	case SvnPath:
		return "svn path"
	case GitClone:
		return "git"
	default:
		return "release archive"
	}
}

// Version is the three-part OCaml release version.
type Version struct {
	Major int
	Minor int
	Patch string // kept as text: releases like "4.00.1" carry leading zeros
}

// ParseVersion parses a "major.minor.patch" string.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("version must be major.minor.patch, got %q", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("bad major version in %q: %w", s, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("bad minor version in %q: %w", s, err)
	}
	return Version{Major: major, Minor: minor, Patch: parts[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%s.%s", v.Major, v.minorText(), v.Patch)
}

// Series is the "major.minor" prefix used in release download paths.
func (v Version) Series() string {
	return fmt.Sprintf("%d.%s", v.Major, v.minorText())
}

// minorText renders the minor component with the historical two-digit
// padding of pre-4.03 release names (3.12, 4.00, 4.01).
func (v Version) minorText() string {
	if v.Major < 4 || (v.Major == 4 && v.Minor < 3) {
		return fmt.Sprintf("%02d", v.Minor)
	}
	return strconv.Itoa(v.Minor)
}

// Legacy reports whether this release predates the compiler-libs install
// target, meaning the compiler's internal interface files must be staged by
// hand after `make install`.
func (v Version) Legacy() bool { return v.Major < 4 }

// Components records which optional pieces the run will install. The
// toolchain itself is unconditional and has no flag.
type Components struct {
	Findlib     bool
	Opam        bool
	Oasis       bool
	Utop        bool
	Batteries   bool
	OCamlScript bool

	// Resolved is false until either an install-set selector or the
	// interactive planner has decided the flags above.
	Resolved bool
}

// AuxToolNames is the fixed order the auxiliary tools are considered and
// installed in.
var AuxToolNames = []string{"oasis", "utop", "batteries", "ocamlscript"}

// AuxSelected reports whether the named auxiliary tool is flagged.
func (c Components) AuxSelected(name string) bool {
	switch name {
	case "oasis":
		return c.Oasis
	case "utop":
		return c.Utop
	case "batteries":
		return c.Batteries
	case "ocamlscript":
		return c.OCamlScript
	default:
		return false
	}
}

// InstallPlan is the fully resolved input for one run. It is constructed
// once by Resolve, completed by the interactive planner when no install-set
// selector was given, and read-only everywhere else.
type InstallPlan struct {
	BaseDir    string
	CustomName string

	Mode        Mode
	Version     Version
	ArchiveURL  string
	SvnRoot     string
	SvnPathName string // path under SvnRoot for SvnPath mode
	GitURL      string
	GitRevision string

	BuildTool      string
	ConfigureFlags []string
	PatchPath      string
	LogFile        string

	FindlibURL string
	OpamURL    string
	OpamRoot   string
	OpamFlags  []string

	Components Components

	// AssumeYes skips the final confirmation. Any explicit install-set
	// selector implies it; -y forces it for interactive runs.
	AssumeYes bool
}

// InstallDir derives the installation prefix. Strict precedence: a custom
// name beats everything, a version-control checkout lands in "ocaml-svn",
// and a release build lands in "ocaml-<version>".
func (p *InstallPlan) InstallDir() string {
	switch {
	case p.CustomName != "":
		return filepath.Join(p.BaseDir, p.CustomName)
	case p.Mode != ReleaseArchive:
		return filepath.Join(p.BaseDir, "ocaml-svn")
	default:
		return filepath.Join(p.BaseDir, "ocaml-"+p.Version.String())
	}
}

// BinDir is the bin directory under the installation prefix.
func (p *InstallPlan) BinDir() string { return filepath.Join(p.InstallDir(), "bin") }

// EtcDir holds the generated shell environment file and the run record.
func (p *InstallPlan) EtcDir() string { return filepath.Join(p.InstallDir(), "etc") }

// BuildDir is the scratch directory sources are unpacked into.
func (p *InstallPlan) BuildDir() string { return filepath.Join(p.InstallDir(), "build") }

// SvnURL is the full checkout URL for the two Subversion modes.
func (p *InstallPlan) SvnURL() string {
	if p.Mode == SvnPath {
		return p.SvnRoot + "/" + strings.Trim(p.SvnPathName, "/")
	}
	return p.SvnRoot + "/trunk"
}

// SourceDescription is the human-readable source line shown in the
// pre-flight summary.
func (p *InstallPlan) SourceDescription() string {
	switch p.Mode {
	case SvnTrunk, SvnPath:
		return fmt.Sprintf("%s (%s)", p.SvnURL(), p.Mode)
	case GitClone:
		if p.GitRevision != "" {
			return fmt.Sprintf("%s @ %s (git)", p.GitURL, p.GitRevision)
		}
		return fmt.Sprintf("%s (git)", p.GitURL)
	default:
		return p.ArchiveURL
	}
}
