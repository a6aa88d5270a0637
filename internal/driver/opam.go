package driver

import (
	"path"
	"path/filepath"

	"ocamlbrew/internal/config"
	"ocamlbrew/internal/shellenv"
)

// Opam builds and installs the opam package manager, then performs its
// one-time environment initialization: OPAMROOT is exported through the
// runner, init runs non-interactively, and the exports are appended to the
// generated shell environment file for the user's own shell startup.
type Opam struct {
	Plan *config.InstallPlan
	Run  *Runner
	// EnvFile is the shell-sourcing file the init exports are appended to.
	EnvFile string
}

func (o *Opam) Name() string { return "opam" }

func (o *Opam) Retrieve() (string, error) {
	buildDir := o.Plan.BuildDir()
	archive := filepath.Join(buildDir, path.Base(o.Plan.OpamURL))
	if err := o.Run.Download(o.Plan.OpamURL, archive); err != nil {
		return "", err
	}
	return Extract(archive, buildDir)
}

func (o *Opam) Build(srcRoot string) error {
	if err := o.Run.Run(srcRoot, "./configure", "--prefix", o.Plan.InstallDir()); err != nil {
		return err
	}
	if err := o.Run.Run(srcRoot, o.Plan.BuildTool, "lib-ext"); err != nil {
		return err
	}
	return o.Run.Run(srcRoot, o.Plan.BuildTool)
}

func (o *Opam) Install(srcRoot string) error {
	if err := o.Run.Run(srcRoot, o.Plan.BuildTool, "install"); err != nil {
		return err
	}
	initArgs := append([]string{"init", "--no-setup"}, o.Plan.OpamFlags...)
	if err := o.Run.Run("", "opam", initArgs...); err != nil {
		return err
	}
	return shellenv.AppendOpam(o.EnvFile, o.Plan.OpamRoot)
}

// OpamPackages installs auxiliary tools through opam, one single install
// call per tool.
type OpamPackages struct {
	Run *Runner
}

func (p *OpamPackages) InstallPackage(name string) error {
	return p.Run.Run("", "opam", "install", "-y", name)
}
