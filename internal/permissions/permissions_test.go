package permissions

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"robotmk/internal/plan"
	"robotmk/internal/session"
)

func mockExecCommand(command string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", command}
	cs = append(cs, args...)
	cmd := exec.Command(os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess is a helper process for mocking exec.Command
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) < 2 || args[0] != "icacls.exe" {
		fmt.Fprintf(os.Stderr, "unexpected command %v\n", args)
		os.Exit(2)
	}

	// Paths containing "denied" fail like icacls does for missing rights.
	if strings.Contains(args[1], "denied") {
		fmt.Println("processed 0 files")
		fmt.Fprintf(os.Stderr, "%s: Access is denied.\n", args[1])
		os.Exit(5)
	}
	fmt.Printf("processed file: %s\n", args[1])
	os.Exit(0)
}

func withMockedICACLS(t *testing.T) {
	old := execCommand
	execCommand = mockExecCommand
	t.Cleanup(func() { execCommand = old })
}

func TestICACLSSuccess(t *testing.T) {
	withMockedICACLS(t)
	granter := ICACLS{}

	assert.NoError(t, granter.GrantFullAccess("alice", `C:\robots`))
	assert.NoError(t, granter.ResetAccess(`C:\robots`))
	assert.NoError(t, granter.Grant("alice", `C:\rcc.exe`, "(RX)"))
}

func TestICACLSFailureCarriesOutput(t *testing.T) {
	withMockedICACLS(t)

	err := ICACLS{}.GrantFullAccess("alice", `C:\denied`)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `icacls.exe C:\denied /grant alice:(OI)(CI)F /T`)
	assert.Contains(t, err.Error(), "processed 0 files")
	assert.Contains(t, err.Error(), "Access is denied.")
}

type grant struct {
	user, path, permissions string
	extraArgs               []string
}

type recordingGranter struct {
	Noop
	grants    []grant
	failUsers map[string]bool
}

func (r *recordingGranter) Grant(user, path, permissions string, extraArgs ...string) error {
	r.grants = append(r.grants, grant{user, path, permissions, extraArgs})
	if r.failUsers[user] {
		return errors.New("access denied")
	}
	return nil
}

func TestGrantToAllPlanUsers(t *testing.T) {
	plans := []plan.Plan{
		{ID: "a1", Session: session.UserSession{UserName: "alice"}},
		{ID: "b1", Session: session.UserSession{UserName: "bob"}},
		{ID: "c1", Session: session.CurrentSession{}},
		{ID: "a2", Session: session.UserSession{UserName: "alice"}},
	}
	granter := &recordingGranter{failUsers: map[string]bool{"bob": true}}

	survivors, failures := GrantToAllPlanUsers(granter, "/bin/rcc", plans, "(RX)", "/Q")

	assert.ElementsMatch(t, []string{"a1", "a2", "c1"}, plan.IDs(survivors))
	require.Len(t, failures, 1)
	assert.Contains(t, failures["b1"], "bob")
	assert.Contains(t, failures["b1"], "access denied")

	// One grant per distinct user, none for the current user.
	assert.ElementsMatch(t, []grant{
		{"alice", "/bin/rcc", "(RX)", []string{"/Q"}},
		{"bob", "/bin/rcc", "(RX)", []string{"/Q"}},
	}, granter.grants)
}

func TestGrantToAllPlanUsersNoPlans(t *testing.T) {
	survivors, failures := GrantToAllPlanUsers(Noop{}, "/x", nil, "(RX)")

	assert.Empty(t, survivors)
	assert.Empty(t, failures)
}
