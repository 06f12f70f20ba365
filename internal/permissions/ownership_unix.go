//go:build !windows

package permissions

import (
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
)

// Ownership hands directories over to the user of a session by changing
// their owner. Explicit permission grants are not needed on Unix since
// binaries shared between users are world-executable.
type Ownership struct{}

// GrantFullAccess recursively changes the owner of path to user.
func (Ownership) GrantFullAccess(userName, path string) error {
	uid, gid, err := lookupIDs(userName)
	if err != nil {
		return err
	}
	return filepath.WalkDir(path, func(p string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := os.Lchown(p, uid, gid); err != nil {
			return fmt.Errorf("failed to change owner of %s to %s: %w", p, userName, err)
		}
		return nil
	})
}

func (Ownership) ResetAccess(string) error { return nil }

func (Ownership) Grant(string, string, string, ...string) error { return nil }

func lookupIDs(userName string) (int, int, error) {
	u, err := user.Lookup(userName)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to look up user %s: %w", userName, err)
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid uid %q of user %s: %w", u.Uid, userName, err)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid gid %q of user %s: %w", u.Gid, userName, err)
	}
	return uid, gid, nil
}
