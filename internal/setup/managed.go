package setup

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"robotmk/internal/permissions"
	"robotmk/internal/plan"
	"robotmk/internal/results"
	"robotmk/internal/session"
	"robotmk/pkg/logging"
)

// UnpackManaged extracts the archive of every managed plan into its target.
// Targets of plans running in a user session are handed over to that user.
// Plans with a manual source pass through unchanged.
func UnpackManaged(plans []plan.Plan, granter permissions.Granter) ([]plan.Plan, []results.SetupFailure) {
	var (
		survivors []plan.Plan
		failures  []results.SetupFailure
	)
	for _, p := range plans {
		if p.Managed == nil {
			survivors = append(survivors, p)
			continue
		}
		if err := unpackTarGz(p.Managed.TarGzPath, p.Managed.Target); err != nil {
			failures = append(failures, failure(p, "Failed to unpack managed source archive", err))
			continue
		}
		if user, ok := p.Session.(session.UserSession); ok {
			if err := granter.GrantFullAccess(user.UserName, p.Managed.Target); err != nil {
				failures = append(failures, failure(p, "Failed to adjust permissions of managed directory", err))
				continue
			}
		}
		logging.Info("Setup", "Plan %s: unpacked %s (version %d, %s)",
			p.ID, p.Managed.TarGzPath, p.Managed.VersionNumber, p.Managed.VersionLabel)
		survivors = append(survivors, p)
	}
	return survivors, failures
}

func unpackTarGz(archivePath, target string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", archivePath, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("failed to decompress %s: %w", archivePath, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", archivePath, err)
		}
		if err := extractEntry(tr, header, target); err != nil {
			return err
		}
	}
}

func extractEntry(tr *tar.Reader, header *tar.Header, target string) error {
	path, err := safeJoin(target, header.Name)
	if err != nil {
		return err
	}

	switch header.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(path, 0o755)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		mode := os.FileMode(header.Mode).Perm() | 0o600
		out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return out.Close()
	default:
		logging.Debug("Setup", "Skipping archive entry %s of type %c", header.Name, header.Typeflag)
		return nil
	}
}

// safeJoin joins name to target and rejects entries escaping target.
func safeJoin(target, name string) (string, error) {
	path := filepath.Join(target, name)
	rel, err := filepath.Rel(target, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry %q escapes target directory", name)
	}
	return path, nil
}
