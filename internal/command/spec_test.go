package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.Equal(t, Spec{Executable: "/my/binary"}, New("/my/binary"))
}

func TestAddArguments(t *testing.T) {
	spec := New("/my/binary")
	spec.AddArgument("mandatory").AddArguments("--flag", "--option", "value")

	assert.Equal(t, []string{"mandatory", "--flag", "--option", "value"}, spec.Arguments)
	assert.Equal(t, []string{"/my/binary", "mandatory", "--flag", "--option", "value"}, spec.Argv())
}

func TestString(t *testing.T) {
	spec := New("/my/binary")
	spec.AddArguments("mandatory", "--flag").AddEnv("RCC_REMOTE_ORIGIN", "http://1.com")

	assert.Equal(t, `RCC_REMOTE_ORIGIN="http://1.com" "/my/binary" "mandatory" "--flag"`, spec.String())
}

func TestCmd(t *testing.T) {
	spec := New("/my/binary")
	spec.AddArguments("a", "b")

	cmd := spec.Cmd()
	assert.Equal(t, []string{"/my/binary", "a", "b"}, cmd.Args)
	assert.Nil(t, cmd.Env, "no extra environment means the parent environment is inherited")

	spec.AddEnv("KEY", "value")
	cmd = spec.Cmd()
	assert.Contains(t, cmd.Env, "KEY=value")
}
