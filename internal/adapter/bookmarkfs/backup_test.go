package bookmarkfs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")

	src := filepath.Join(dir, "data.json")
	if err := os.WriteFile(src, []byte(`[{"url":"https://a.com"}]`), 0644); err != nil {
		t.Fatal(err)
	}

	mgr, err := NewBackupManager(backupDir, 5)
	if err != nil {
		t.Fatalf("NewBackupManager() error = %v", err)
	}

	backupPath, err := mgr.Backup(src)
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if !strings.HasSuffix(backupPath, "data.json.backup") {
		t.Errorf("backup path = %q, want timestamped data.json.backup name", backupPath)
	}

	got, err := os.ReadFile(backupPath)
	if err != nil {
		t.Fatalf("backup not readable: %v", err)
	}
	if string(got) != `[{"url":"https://a.com"}]` {
		t.Errorf("backup content = %q", got)
	}
}

func TestBackupMissingFile(t *testing.T) {
	mgr, err := NewBackupManager(filepath.Join(t.TempDir(), "backups"), 5)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Backup(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Backup() of missing file, want error")
	}
}

func TestBackupPrunesOldCopies(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")

	src := filepath.Join(dir, "data.json")
	if err := os.WriteFile(src, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}

	mgr, err := NewBackupManager(backupDir, 2)
	if err != nil {
		t.Fatal(err)
	}

	// Pre-seed old backups; timestamped names sort chronologically, so
	// these are older than anything Backup produces now.
	for _, name := range []string{
		"20200101_000000_data.json.backup",
		"20200102_000000_data.json.backup",
	} {
		if err := os.WriteFile(filepath.Join(backupDir, name), []byte("old"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := mgr.Backup(src); err != nil {
		t.Fatalf("Backup() error = %v", err)
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("got %d backups after prune, want 2: %v", len(entries), names)
	}
	if _, err := os.Stat(filepath.Join(backupDir, "20200101_000000_data.json.backup")); err == nil {
		t.Error("oldest backup survived pruning")
	}
}

func TestBackupDirectory(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")

	if err := os.WriteFile(filepath.Join(dir, "a.json"), []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0644); err != nil {
		t.Fatal(err)
	}

	mgr, err := NewBackupManager(backupDir, 5)
	if err != nil {
		t.Fatal(err)
	}

	loader := NewLoader([]string{"*.json"}, nil)
	snapshot, err := mgr.BackupDirectory(dir, loader)
	if err != nil {
		t.Fatalf("BackupDirectory() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(snapshot, "a.json")); err != nil {
		t.Errorf("a.json missing from snapshot: %v", err)
	}
	if _, err := os.Stat(filepath.Join(snapshot, "notes.txt")); err == nil {
		t.Error("non-matching file copied into snapshot")
	}
}
