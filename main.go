package main

import (
	"ocamlbrew/cmd"
)

// main delegates to cmd.Execute, which owns command line parsing and the
// uniform exit-code-1 failure path.
//
// ocamlbrew is a bootstrap installer for an OCaml environment:
//   - Resolves one immutable install plan from defaults, an optional YAML
//     profile, OCAMLBREW_* environment variables, and command-line flags
//   - Fills any undecided component choices through a short interactive
//     question sequence, then confirms before touching the filesystem
//   - Drives the OCaml toolchain, findlib, and opam through their
//     retrieve/build/install stages in fixed dependency order, strictly
//     sequentially and fail-fast
//   - Installs requested auxiliary tools (oasis, utop, batteries,
//     ocamlscript) through opam, each independently
//   - Captures every external command's output in a log file while keeping
//     progress notices and prompts on the terminal
//   - Leaves behind etc/ocamlbrew.sh to source from the shell startup file
//     and etc/ocamlbrew.json describing what was installed
func main() {
	cmd.Execute()
}
