package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resolve runs Resolve with a clean environment and no profile, so tests
// only see what they set themselves.
func resolve(t *testing.T, fl Flags) *InstallPlan {
	t.Helper()
	clearEnv(t)
	plan, err := Resolve(fl)
	require.NoError(t, err)
	if fl.LogFile == "" {
		t.Cleanup(func() { _ = os.Remove(plan.LogFile) })
	}
	return plan
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OCAMLBREW_PROFILE", filepath.Join(t.TempDir(), "no-such-profile.yaml"))
	for _, key := range []string{
		"OCAMLBREW_BASE", "OCAMLBREW_VERSION", "OCAMLBREW_URL",
		"OCAMLBREW_SVN_ROOT", "OCAMLBREW_MAKE", "OCAMLBREW_CONFIGURE_FLAGS",
		"OCAMLBREW_PATCH", "OCAMLBREW_LOGFILE", "OCAMLBREW_NAME",
		"OCAMLBREW_FINDLIB_URL", "OCAMLBREW_OPAM_URL", "OPAMROOT",
		"OCAMLBREW_OPAM_FLAGS",
	} {
		t.Setenv(key, "")
	}
}

func TestSelectorTable(t *testing.T) {
	tests := []struct {
		name string
		fl   Flags
		want Components
	}{
		{
			name: "all",
			fl:   Flags{All: true},
			want: Components{Findlib: true, Opam: true, Oasis: true, Utop: true, Batteries: true, OCamlScript: true, Resolved: true},
		},
		{
			name: "toolchain only",
			fl:   Flags{ToolchainOnly: true},
			want: Components{Resolved: true},
		},
		{
			name: "with findlib",
			fl:   Flags{WithFindlib: true},
			want: Components{Findlib: true, Resolved: true},
		},
		{
			name: "with opam",
			fl:   Flags{WithOpam: true},
			want: Components{Opam: true, Resolved: true},
		},
		{
			name: "full stack",
			fl:   Flags{FullStack: true},
			want: Components{Findlib: true, Opam: true, Oasis: true, Resolved: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := resolve(t, tt.fl)
			assert.Equal(t, tt.want, plan.Components)
			assert.True(t, plan.AssumeYes, "an explicit selector is batch mode")
		})
	}
}

func TestNoSelectorLeavesComponentsUnresolved(t *testing.T) {
	plan := resolve(t, Flags{})
	assert.False(t, plan.Components.Resolved)
	assert.Equal(t, Components{}, plan.Components)
	assert.False(t, plan.AssumeYes)
}

func TestConflictingSelectorsRejected(t *testing.T) {
	clearEnv(t)
	_, err := Resolve(Flags{All: true, ToolchainOnly: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestConflictingSourcesRejected(t *testing.T) {
	clearEnv(t)
	_, err := Resolve(Flags{Trunk: true, GitURL: "https://example.com/ocaml.git"})
	require.Error(t, err)
}

func TestGitRevisionRequiresGitURL(t *testing.T) {
	clearEnv(t)
	_, err := Resolve(Flags{GitRevision: "abc123"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "-g")
}

func TestConfigureFlagRewrite(t *testing.T) {
	// The historical lossy "="-to-space rewrite, pinned exactly.
	got := RewriteConfigureFlags("prefix=/x optflag=yes")
	assert.Equal(t, []string{"prefix", "/x", "optflag", "yes"}, got)
}

func TestConfigureFlagsReachThePlan(t *testing.T) {
	plan := resolve(t, Flags{ConfigureFlags: "with-pthread no-curses=1"})
	assert.Equal(t, []string{"with-pthread", "no-curses", "1"}, plan.ConfigureFlags)
}

func TestInstallDirPrecedence(t *testing.T) {
	t.Run("custom name beats everything", func(t *testing.T) {
		plan := resolve(t, Flags{BaseDir: "/base", Name: "mine", Trunk: true})
		assert.Equal(t, filepath.Join("/base", "mine"), plan.InstallDir())
	})
	t.Run("version control mode", func(t *testing.T) {
		plan := resolve(t, Flags{BaseDir: "/base", Trunk: true})
		assert.Equal(t, filepath.Join("/base", "ocaml-svn"), plan.InstallDir())
	})
	t.Run("release version", func(t *testing.T) {
		plan := resolve(t, Flags{BaseDir: "/base", Version: "4.14.2"})
		assert.Equal(t, filepath.Join("/base", "ocaml-4.14.2"), plan.InstallDir())
	})
}

func TestVersionOverrideRegeneratesURL(t *testing.T) {
	plan := resolve(t, Flags{Version: "4.01.0"})
	assert.Equal(t, "https://caml.inria.fr/pub/distrib/ocaml-4.01/ocaml-4.01.0.tar.gz", plan.ArchiveURL)

	plan = resolve(t, Flags{Version: "3.12.1"})
	assert.Equal(t, "https://caml.inria.fr/pub/distrib/ocaml-3.12/ocaml-3.12.1.tar.gz", plan.ArchiveURL)
	assert.True(t, plan.Version.Legacy())

	plan = resolve(t, Flags{Version: "4.14.2"})
	assert.Equal(t, "https://caml.inria.fr/pub/distrib/ocaml-4.14/ocaml-4.14.2.tar.gz", plan.ArchiveURL)
	assert.False(t, plan.Version.Legacy())
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("4.14.2")
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 4, Minor: 14, Patch: "2"}, v)
	assert.Equal(t, "4.14.2", v.String())
	assert.Equal(t, "4.14", v.Series())

	_, err = ParseVersion("4.14")
	assert.Error(t, err)
	_, err = ParseVersion("a.b.c")
	assert.Error(t, err)
}

func TestDefaultLogFileIsUniqueTempFile(t *testing.T) {
	plan := resolve(t, Flags{})
	require.NotEmpty(t, plan.LogFile)
	assert.Contains(t, filepath.Base(plan.LogFile), "ocamlbrew-")
	_, err := os.Stat(plan.LogFile)
	assert.NoError(t, err, "the generated log file should exist")

	other := resolve(t, Flags{})
	assert.NotEqual(t, plan.LogFile, other.LogFile)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCAMLBREW_BASE", "/from-env")
	t.Setenv("OCAMLBREW_VERSION", "4.01.0")
	t.Setenv("OCAMLBREW_MAKE", "gmake")

	plan, err := Resolve(Flags{LogFile: filepath.Join(t.TempDir(), "b.log")})
	require.NoError(t, err)
	assert.Equal(t, "/from-env", plan.BaseDir)
	assert.Equal(t, "4.01.0", plan.Version.String())
	assert.Equal(t, "gmake", plan.BuildTool)
	assert.Contains(t, plan.ArchiveURL, "ocaml-4.01.0.tar.gz")
}

func TestFlagsBeatEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCAMLBREW_BASE", "/from-env")
	plan, err := Resolve(Flags{BaseDir: "/from-flag", LogFile: filepath.Join(t.TempDir(), "b.log")})
	require.NoError(t, err)
	assert.Equal(t, "/from-flag", plan.BaseDir)
}

func TestEnvURLOverrideKeptWithoutVersionFlag(t *testing.T) {
	clearEnv(t)
	t.Setenv("OCAMLBREW_URL", "https://mirror.example.com/ocaml.tar.gz")
	plan, err := Resolve(Flags{LogFile: filepath.Join(t.TempDir(), "b.log")})
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com/ocaml.tar.gz", plan.ArchiveURL)
}

func TestOpamRootDefaultsUnderInstallDir(t *testing.T) {
	plan := resolve(t, Flags{BaseDir: "/base"})
	assert.Equal(t, plan.InstallDir()+"/.opam", plan.OpamRoot)
}

func TestOpamRootFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPAMROOT", "/custom/opam")
	plan, err := Resolve(Flags{LogFile: filepath.Join(t.TempDir(), "b.log")})
	require.NoError(t, err)
	assert.Equal(t, "/custom/opam", plan.OpamRoot)
}

func TestAuxToolSelection(t *testing.T) {
	assert.Equal(t, []string{"oasis", "utop", "batteries", "ocamlscript"}, AuxToolNames)

	c := Components{Utop: true, OCamlScript: true}
	assert.False(t, c.AuxSelected("oasis"))
	assert.True(t, c.AuxSelected("utop"))
	assert.False(t, c.AuxSelected("batteries"))
	assert.True(t, c.AuxSelected("ocamlscript"))
	assert.False(t, c.AuxSelected("no-such-tool"))
}

func TestSvnURL(t *testing.T) {
	plan := resolve(t, Flags{Trunk: true})
	assert.Equal(t, "https://caml.inria.fr/svn/ocaml/trunk", plan.SvnURL())

	plan = resolve(t, Flags{SvnPath: "branches/4.00"})
	assert.Equal(t, "https://caml.inria.fr/svn/ocaml/branches/4.00", plan.SvnURL())
}
