package archive

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestBackupAndRestore(t *testing.T) {
	target := t.TempDir()
	backups := t.TempDir()

	writeFile(t, filepath.Join(target, "egll.ini"), "london")
	writeFile(t, filepath.Join(target, "kjfk.py"), "new york")
	writeFile(t, filepath.Join(target, "sub", "ignored.ini"), "nested")
	elsewhere := filepath.Join(t.TempDir(), "linked.ini")
	writeFile(t, elsewhere, "linked")
	if err := os.Symlink(elsewhere, filepath.Join(target, "linked.ini")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.Local)
	res, err := BackupFiles(target, backups, "activate", now)
	if err != nil {
		t.Fatalf("BackupFiles error: %v", err)
	}
	if res == nil {
		t.Fatal("expected a backup")
	}
	if want := filepath.Join(backups, "2024", "gsx-profiles--20240501-123000.tar.gz"); res.ArchivePath != want {
		t.Errorf("ArchivePath = %q, want %q", res.ArchivePath, want)
	}
	if want := []string{"egll.ini", "kjfk.py", "linked.ini"}; !reflect.DeepEqual(res.Files, want) {
		t.Errorf("Files = %v, want %v (folders skipped)", res.Files, want)
	}

	entries, err := ListBackups(backups)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Reason != "activate" || entries[0].FileCount != 3 {
		t.Fatalf("ListBackups = %+v", entries)
	}
	if !entries[0].CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", entries[0].CreatedAt, now)
	}

	restoreDir := t.TempDir()
	writeFile(t, filepath.Join(restoreDir, "egll.ini"), "stale")
	restored, err := Restore(res.ArchivePath, restoreDir)
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if len(restored) != 3 {
		t.Errorf("restored = %v", restored)
	}
	if data, _ := os.ReadFile(filepath.Join(restoreDir, "linked.ini")); string(data) != "linked" {
		t.Errorf("symlinked profile should be backed up by content, got %q", data)
	}
	data, _ := os.ReadFile(filepath.Join(restoreDir, "egll.ini"))
	if string(data) != "london" {
		t.Errorf("egll.ini = %q, want restored content", data)
	}
}

func TestBackupEmptyTarget(t *testing.T) {
	res, err := BackupFiles(t.TempDir(), t.TempDir(), "", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if res != nil {
		t.Errorf("expected no backup for an empty folder, got %+v", res)
	}

	res, err = BackupFiles(filepath.Join(t.TempDir(), "missing"), t.TempDir(), "", time.Now())
	if err != nil || res != nil {
		t.Errorf("missing target: res=%v err=%v", res, err)
	}
}

func TestListBackupsOrderAndFiltering(t *testing.T) {
	backups := t.TempDir()
	target := t.TempDir()
	writeFile(t, filepath.Join(target, "a.ini"), "a")

	older := time.Date(2023, 12, 31, 23, 0, 0, 0, time.Local)
	newer := time.Date(2024, 1, 2, 8, 0, 0, 0, time.Local)
	for _, ts := range []time.Time{older, newer} {
		if _, err := BackupFiles(target, backups, "", ts); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, filepath.Join(backups, "2024", "notes.txt"), "not a backup")

	entries, err := ListBackups(backups)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if !entries[0].CreatedAt.Equal(newer) {
		t.Errorf("first entry = %v, want newest", entries[0].CreatedAt)
	}

	none, err := ListBackups(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(none) != 0 {
		t.Errorf("missing dir: %v %v", none, err)
	}
}
