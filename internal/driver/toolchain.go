// Package driver implements the per-component retrieve/build/install
// drivers the pipeline invokes, plus the shared command runner, download,
// and extraction helpers they are built on.
package driver

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"ocamlbrew/internal/config"
)

// Toolchain builds and installs the OCaml compiler itself.
type Toolchain struct {
	Plan *config.InstallPlan
	Run  *Runner
}

func (t *Toolchain) Name() string { return "ocaml" }

// Retrieve obtains the compiler sources via the plan's acquisition mode and
// returns the source root the build and install stages operate in.
func (t *Toolchain) Retrieve() (string, error) {
	buildDir := t.Plan.BuildDir()
	switch t.Plan.Mode {
	case config.SvnTrunk, config.SvnPath:
		dest := filepath.Join(buildDir, "ocaml")
		if err := t.Run.SvnCheckout(t.Plan.SvnURL(), dest); err != nil {
			return "", err
		}
		return dest, nil
	case config.GitClone:
		dest := filepath.Join(buildDir, "ocaml")
		if err := t.Run.GitClone(t.Plan.GitURL, t.Plan.GitRevision, dest); err != nil {
			return "", err
		}
		return dest, nil
	default:
		archive := filepath.Join(buildDir, path.Base(t.Plan.ArchiveURL))
		if err := t.Run.Download(t.Plan.ArchiveURL, archive); err != nil {
			return "", err
		}
		return Extract(archive, buildDir)
	}
}

// Build optionally applies the plan's patch, then configures and compiles
// the native toolchain.
func (t *Toolchain) Build(srcRoot string) error {
	if t.Plan.PatchPath != "" {
		if err := applyPatch(t.Run, srcRoot, t.Plan.PatchPath); err != nil {
			return err
		}
	}
	configureArgs := append([]string{"-prefix", t.Plan.InstallDir()}, t.Plan.ConfigureFlags...)
	if err := t.Run.Run(srcRoot, "./configure", configureArgs...); err != nil {
		return err
	}
	return t.Run.Run(srcRoot, t.Plan.BuildTool, "world.opt")
}

// Install runs the native install target. For pre-4.0 releases it also
// stages the compiler's internal interface files, which findlib and the
// interactive toplevel expect under lib/ocaml/compiler-libs but which those
// releases never installed themselves.
func (t *Toolchain) Install(srcRoot string) error {
	if err := t.Run.Run(srcRoot, t.Plan.BuildTool, "install"); err != nil {
		return err
	}
	if t.Plan.Mode == config.ReleaseArchive && t.Plan.Version.Legacy() {
		return t.stageCompilerLibs(srcRoot)
	}
	return nil
}

func (t *Toolchain) stageCompilerLibs(srcRoot string) error {
	destDir := filepath.Join(t.Plan.InstallDir(), "lib", "ocaml", "compiler-libs")
	for _, sub := range []string{"utils", "typing", "parsing"} {
		target := filepath.Join(destDir, sub)
		if err := os.MkdirAll(target, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", target, err)
		}
		for _, pattern := range []string{"*.cmi", "*.mli", "*.cmo", "*.cmx", "*.o"} {
			matches, err := filepath.Glob(filepath.Join(srcRoot, sub, pattern))
			if err != nil {
				return err
			}
			for _, match := range matches {
				dest := filepath.Join(target, filepath.Base(match))
				if err := copyFile(match, dest); err != nil {
					return fmt.Errorf("failed to stage %s: %w", match, err)
				}
			}
		}
	}
	return nil
}

// applyPatch feeds one patch file to patch(1) inside the source tree. The
// patch path may be absolute or relative to the source tree.
func applyPatch(r *Runner, srcRoot, patchPath string) error {
	p := patchPath
	if !filepath.IsAbs(p) {
		p = filepath.Join(srcRoot, p)
	}
	f, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("failed to open patch %s: %w", patchPath, err)
	}
	defer f.Close()
	return r.RunInput(srcRoot, f, "patch", "-p1")
}
