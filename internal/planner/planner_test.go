package planner

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocamlbrew/internal/config"
)

// scriptConsole replays canned answers and records everything said and
// asked.
type scriptConsole struct {
	answers []string
	next    int
	said    []string
	asked   []string
}

func (s *scriptConsole) Say(format string, a ...any) {
	s.said = append(s.said, fmt.Sprintf(format, a...))
}

func (s *scriptConsole) Prompt(msg string) (string, error) {
	s.asked = append(s.asked, msg)
	if s.next >= len(s.answers) {
		return "", io.EOF
	}
	answer := s.answers[s.next]
	s.next++
	return answer, nil
}

func TestFillAllYes(t *testing.T) {
	con := &scriptConsole{answers: []string{"y", "y", "y", "y", "y", "y"}}
	plan := &config.InstallPlan{}
	require.NoError(t, Fill(con, plan))

	assert.Equal(t, config.Components{
		Findlib: true, Opam: true,
		Oasis: true, Utop: true, Batteries: true, OCamlScript: true,
		Resolved: true,
	}, plan.Components)
	assert.Len(t, con.asked, 6)
}

func TestFillFindlibNoSkipsEverything(t *testing.T) {
	con := &scriptConsole{answers: []string{"n"}}
	plan := &config.InstallPlan{}
	require.NoError(t, Fill(con, plan))

	assert.Equal(t, config.Components{Resolved: true}, plan.Components)
	assert.Len(t, con.asked, 1, "a no to findlib must not ask anything further")
}

func TestFillOpamNoSkipsAuxTools(t *testing.T) {
	con := &scriptConsole{answers: []string{"y", "n"}}
	plan := &config.InstallPlan{}
	require.NoError(t, Fill(con, plan))

	assert.Equal(t, config.Components{Findlib: true, Resolved: true}, plan.Components)
	assert.Len(t, con.asked, 2)
}

func TestFillAuxToolsIndependent(t *testing.T) {
	// no to oasis and batteries must not skip utop or ocamlscript.
	con := &scriptConsole{answers: []string{"y", "y", "n", "Y", "n", "y"}}
	plan := &config.InstallPlan{}
	require.NoError(t, Fill(con, plan))

	c := plan.Components
	assert.False(t, c.Oasis)
	assert.True(t, c.Utop, "answers are lowercased before comparing")
	assert.False(t, c.Batteries)
	assert.True(t, c.OCamlScript)
	assert.Len(t, con.asked, 6)
}

func TestFillSkipsResolvedPlan(t *testing.T) {
	con := &scriptConsole{}
	plan := &config.InstallPlan{Components: config.Components{Resolved: true, Findlib: true}}
	require.NoError(t, Fill(con, plan))
	assert.Empty(t, con.asked)
	assert.True(t, plan.Components.Findlib)
}

func TestFillPropagatesPromptError(t *testing.T) {
	con := &scriptConsole{} // no answers: first prompt hits EOF
	plan := &config.InstallPlan{}
	assert.Error(t, Fill(con, plan))
}

func TestConfirmBatchModeSkipsPrompt(t *testing.T) {
	con := &scriptConsole{}
	plan := &config.InstallPlan{AssumeYes: true}
	require.NoError(t, Confirm(con, plan))
	assert.Empty(t, con.asked)
}

func TestConfirmAccepted(t *testing.T) {
	for _, answer := range []string{"y", "Y", " y "} {
		con := &scriptConsole{answers: []string{answer}}
		plan := &config.InstallPlan{}
		assert.NoError(t, Confirm(con, plan), "answer %q", answer)
	}
}

func TestConfirmDeclined(t *testing.T) {
	for _, answer := range []string{"n", "", "yes please", "q"} {
		con := &scriptConsole{answers: []string{answer}}
		plan := &config.InstallPlan{}
		err := Confirm(con, plan)
		assert.ErrorIs(t, err, ErrDeclined, "answer %q", answer)
	}
}

func TestSummarizeNamesEveryComponent(t *testing.T) {
	con := &scriptConsole{}
	plan := &config.InstallPlan{
		BaseDir:    "/base",
		Components: config.Components{Findlib: true, Opam: true, Utop: true, Resolved: true},
	}
	Summarize(con, plan)

	all := fmt.Sprint(con.said)
	for _, name := range []string{"ocaml", "findlib", "opam", "oasis", "utop", "batteries", "ocamlscript"} {
		assert.Contains(t, all, name)
	}
}
