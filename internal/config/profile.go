package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// profile is the optional declarative defaults file. Every field maps onto
// one InstallPlan field; unset fields leave the built-in default alone.
// Flags and OCAMLBREW_* environment variables still override anything set
// here.
type profile struct {
	BaseDir        string `yaml:"base_dir"`
	Version        string `yaml:"version"`
	URL            string `yaml:"url"`
	SvnRoot        string `yaml:"svn_root"`
	Make           string `yaml:"make"`
	ConfigureFlags string `yaml:"configure_flags"`
	Patch          string `yaml:"patch"`
	LogFile        string `yaml:"log_file"`
	Name           string `yaml:"name"`
	FindlibURL     string `yaml:"findlib_url"`
	OpamURL        string `yaml:"opam_url"`
	OpamRoot       string `yaml:"opam_root"`
	OpamFlags      string `yaml:"opam_flags"`
}

// profilePath returns the profile location: $OCAMLBREW_PROFILE if set,
// otherwise ~/.ocamlbrew.yaml.
func profilePath() string {
	if p := os.Getenv("OCAMLBREW_PROFILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ocamlbrew.yaml")
}

// applyProfile merges the YAML profile into the plan. A missing file is
// fine; a file that exists but does not parse is a hard error, since
// silently ignoring a broken profile would install the wrong thing.
func applyProfile(plan *InstallPlan) error {
	path := profilePath()
	if path == "" {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read profile %s: %w", path, err)
	}

	var p profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("failed to parse profile %s: %w", path, err)
	}

	if p.BaseDir != "" {
		plan.BaseDir = p.BaseDir
	}
	if p.Version != "" {
		version, err := ParseVersion(p.Version)
		if err != nil {
			return fmt.Errorf("profile %s: %w", path, err)
		}
		plan.Version = version
		plan.ArchiveURL = releaseURL(version)
	}
	if p.URL != "" {
		plan.ArchiveURL = p.URL
	}
	if p.SvnRoot != "" {
		plan.SvnRoot = p.SvnRoot
	}
	if p.Make != "" {
		plan.BuildTool = p.Make
	}
	if p.ConfigureFlags != "" {
		plan.ConfigureFlags = RewriteConfigureFlags(p.ConfigureFlags)
	}
	if p.Patch != "" {
		plan.PatchPath = p.Patch
	}
	if p.LogFile != "" {
		plan.LogFile = p.LogFile
	}
	if p.Name != "" {
		plan.CustomName = p.Name
	}
	if p.FindlibURL != "" {
		plan.FindlibURL = p.FindlibURL
	}
	if p.OpamURL != "" {
		plan.OpamURL = p.OpamURL
	}
	if p.OpamRoot != "" {
		plan.OpamRoot = p.OpamRoot
	}
	if p.OpamFlags != "" {
		plan.OpamFlags = strings.Fields(p.OpamFlags)
	}
	return nil
}
