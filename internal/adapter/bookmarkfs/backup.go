package bookmarkfs

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BackupManager copies bookmark files aside before destructive
// operations, keeping a bounded number of backups per file.
type BackupManager struct {
	dir    string
	keep   int
	suffix string
}

// NewBackupManager creates a manager storing backups under dir.
func NewBackupManager(dir string, keep int) (*BackupManager, error) {
	if keep <= 0 {
		keep = 10
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &BackupManager{dir: dir, keep: keep, suffix: ".backup"}, nil
}

// Backup copies the file into the backup directory with a timestamped
// name and prunes old backups of the same file.
func (m *BackupManager) Backup(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("cannot back up %s: %w", path, err)
	}

	base := filepath.Base(path)
	stamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(m.dir, fmt.Sprintf("%s_%s%s", stamp, base, m.suffix))

	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}

	m.prune(base)
	return backupPath, nil
}

// BackupDirectory backs up every matching bookmark file in dir into a
// timestamped snapshot subdirectory.
func (m *BackupManager) BackupDirectory(dir string, loader *Loader) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("cannot back up directory %s: %w", dir, err)
	}

	stamp := time.Now().Format("20060102_150405")
	snapshot := filepath.Join(m.dir, "directory_backup_"+stamp)
	if err := os.MkdirAll(snapshot, 0755); err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !loader.matches(entry.Name()) {
			continue
		}
		src := filepath.Join(dir, entry.Name())
		dst := filepath.Join(snapshot, entry.Name())
		if err := copyFile(src, dst); err != nil {
			log.Printf("failed to back up %s: %v", entry.Name(), err)
		}
	}
	return snapshot, nil
}

// prune removes the oldest backups of a file beyond the retention count.
// Timestamped names sort chronologically, so lexical order suffices.
func (m *BackupManager) prune(base string) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return
	}

	var backups []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, base+m.suffix) {
			backups = append(backups, name)
		}
	}
	if len(backups) <= m.keep {
		return
	}

	sort.Strings(backups)
	for _, name := range backups[:len(backups)-m.keep] {
		if err := os.Remove(filepath.Join(m.dir, name)); err != nil {
			log.Printf("failed to prune backup %s: %v", name, err)
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
