package command

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Spec describes an external command: the executable, its arguments and
// additional environment variables. It is a plain value so that environments
// can wrap it and sessions can launch it in their own way.
type Spec struct {
	Executable string
	Arguments  []string
	Env        []EnvVar
}

// EnvVar is a single KEY=VALUE pair added to the inherited environment.
type EnvVar struct {
	Key   string
	Value string
}

// New returns a Spec for executable without arguments.
func New(executable string) Spec {
	return Spec{Executable: executable}
}

// AddArgument appends one argument.
func (s *Spec) AddArgument(argument string) *Spec {
	s.Arguments = append(s.Arguments, argument)
	return s
}

// AddArguments appends several arguments in order.
func (s *Spec) AddArguments(arguments ...string) *Spec {
	s.Arguments = append(s.Arguments, arguments...)
	return s
}

// AddEnv appends an environment variable.
func (s *Spec) AddEnv(key, value string) *Spec {
	s.Env = append(s.Env, EnvVar{Key: key, Value: value})
	return s
}

// Argv returns the executable followed by all arguments.
func (s Spec) Argv() []string {
	argv := make([]string, 0, len(s.Arguments)+1)
	argv = append(argv, s.Executable)
	return append(argv, s.Arguments...)
}

// Environ returns the process environment extended by the Spec's variables.
func (s Spec) Environ() []string {
	env := os.Environ()
	for _, v := range s.Env {
		env = append(env, v.Key+"="+v.Value)
	}
	return env
}

// Cmd builds an *exec.Cmd for the Spec. The command is not bound to a
// context; callers that need to kill a whole process tree do it themselves.
func (s Spec) Cmd() *exec.Cmd {
	cmd := exec.Command(s.Executable, s.Arguments...)
	if len(s.Env) > 0 {
		cmd.Env = s.Environ()
	}
	return cmd
}

// String renders the command for log and error messages.
func (s Spec) String() string {
	parts := make([]string, 0, len(s.Env)+len(s.Arguments)+1)
	for _, v := range s.Env {
		parts = append(parts, fmt.Sprintf("%s=%q", v.Key, v.Value))
	}
	for _, a := range s.Argv() {
		parts = append(parts, fmt.Sprintf("%q", a))
	}
	return strings.Join(parts, " ")
}
