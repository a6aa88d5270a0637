package driver

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Runner executes the external build commands. All stdout/stderr goes into
// the run log; the exit status is the only signal the pipeline consumes.
type Runner struct {
	// Log receives the full output of every command.
	Log io.Writer
	// Screen is the interactive channel, used only for download progress.
	Screen io.Writer
	// Env entries are appended to the inherited environment (PATH with the
	// new bin directory, OPAMROOT, OPAMYES).
	Env []string
}

// Run executes name with args in dir ("" for the current directory),
// capturing all output in the log.
func (r *Runner) Run(dir, name string, args ...string) error {
	return r.run(dir, nil, name, args...)
}

// RunInput is Run with stdin connected to the given reader. Used for
// feeding a patch file to patch(1).
func (r *Runner) RunInput(dir string, stdin io.Reader, name string, args ...string) error {
	return r.run(dir, stdin, name, args...)
}

func (r *Runner) run(dir string, stdin io.Reader, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Stdin = stdin
	cmd.Stdout = r.Log
	cmd.Stderr = r.Log
	cmd.Env = append(os.Environ(), r.Env...)

	// Trace the exact invocation in the log so a failed run is diagnosable.
	fmt.Fprintf(r.Log, "+ %s\n", strings.Join(cmd.Args, " "))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

func (r *Runner) screen() io.Writer {
	if r.Screen == nil {
		return io.Discard
	}
	return r.Screen
}
