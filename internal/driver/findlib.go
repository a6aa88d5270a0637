package driver

import (
	"path"
	"path/filepath"

	"ocamlbrew/internal/config"
)

// Findlib builds and installs the findlib library manager against the
// freshly installed toolchain. The runner's PATH already puts the new
// ocaml binaries first, which is how findlib's configure finds them.
type Findlib struct {
	Plan *config.InstallPlan
	Run  *Runner
}

func (f *Findlib) Name() string { return "findlib" }

func (f *Findlib) Retrieve() (string, error) {
	buildDir := f.Plan.BuildDir()
	archive := filepath.Join(buildDir, path.Base(f.Plan.FindlibURL))
	if err := f.Run.Download(f.Plan.FindlibURL, archive); err != nil {
		return "", err
	}
	return Extract(archive, buildDir)
}

func (f *Findlib) Build(srcRoot string) error {
	if err := f.Run.Run(srcRoot, "./configure"); err != nil {
		return err
	}
	if err := f.Run.Run(srcRoot, f.Plan.BuildTool, "all"); err != nil {
		return err
	}
	return f.Run.Run(srcRoot, f.Plan.BuildTool, "opt")
}

func (f *Findlib) Install(srcRoot string) error {
	return f.Run.Run(srcRoot, f.Plan.BuildTool, "install")
}
