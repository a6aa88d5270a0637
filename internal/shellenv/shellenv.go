// Package shellenv generates the shell-sourcing file under the
// installation's etc directory. Users source it from their own shell
// startup file to put the new toolchain on PATH and, when opam was
// installed, to load its environment.
package shellenv

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the generated file's name under the etc directory.
const FileName = "ocamlbrew.sh"

// Path returns the full path of the environment file for an installation
// prefix.
func Path(installDir string) string {
	return filepath.Join(installDir, "etc", FileName)
}

// Write creates the environment file with the PATH export for binDir,
// replacing any previous content.
func Write(path, binDir string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	content := fmt.Sprintf("export PATH=%q:\"$PATH\"\n", binDir)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// AppendOpam appends the opam exports: the root directory variable and the
// environment-evaluation line.
func AppendOpam(path, opamRoot string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	lines := fmt.Sprintf("export OPAMROOT=%q\neval \"$(opam env)\"\n", opamRoot)
	if _, err := f.WriteString(lines); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	return nil
}
