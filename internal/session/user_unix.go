//go:build !windows

package session

import (
	"context"
	"fmt"
	"os/user"
	"strconv"
	"syscall"
)

// runAsUser switches credentials in the child. This requires the scheduler to
// run with sufficient privileges.
func runAsUser(ctx context.Context, userName string, spec RunSpec) (RunOutcome, error) {
	credential, err := credentialFor(userName)
	if err != nil {
		return RunOutcome{}, err
	}
	cmd := spec.Command.Cmd()
	cmd.SysProcAttr = &syscall.SysProcAttr{Credential: credential}
	return runProcess(ctx, cmd, spec)
}

func credentialFor(userName string) (*syscall.Credential, error) {
	u, err := user.Lookup(userName)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user %s: %w", userName, err)
	}
	uid, err := strconv.ParseUint(u.Uid, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid uid %q of user %s: %w", u.Uid, userName, err)
	}
	gid, err := strconv.ParseUint(u.Gid, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid gid %q of user %s: %w", u.Gid, userName, err)
	}
	credential := &syscall.Credential{Uid: uint32(uid), Gid: uint32(gid)}

	groupIDs, err := u.GroupIds()
	if err == nil {
		for _, g := range groupIDs {
			if id, err := strconv.ParseUint(g, 10, 32); err == nil {
				credential.Groups = append(credential.Groups, uint32(id))
			}
		}
	}
	return credential, nil
}
