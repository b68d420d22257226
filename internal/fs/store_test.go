package fs

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tormodhaugland/gsxpm/internal/tree"
)

func TestReadUserFolders(t *testing.T) {
	base := filepath.Join(t.TempDir(), "user_folders")

	items, err := ReadUserFolders(base)
	if err != nil {
		t.Fatalf("ReadUserFolders error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("new store should be empty, got %v", names(items))
	}
	if !CheckFolderExists(base) {
		t.Fatal("base should be created")
	}

	touch(t, filepath.Join(base, "Europe", "EGLL", "egll.ini"))
	touch(t, filepath.Join(base, "Europe", "EGLL", "egll.ini.bak"))
	touch(t, filepath.Join(base, "loose.py"))
	if err := os.MkdirAll(filepath.Join(base, "Empty"), 0755); err != nil {
		t.Fatal(err)
	}

	items, err = ReadUserFolders(base)
	if err != nil {
		t.Fatal(err)
	}
	if got := names(items); len(got) != 3 || got[0] != "Empty" || got[1] != "Europe" || got[2] != "loose.py" {
		t.Fatalf("top level = %v", got)
	}
	if items[0].Children == nil || !items[0].IsDirectory {
		t.Error("empty folder should be an expandable directory")
	}
	if items[2].IsDirectory || items[2].ID != filepath.Join(base, "loose.py") {
		t.Errorf("unexpected file node %+v", items[2])
	}

	egll := tree.FindByID(items, filepath.Join(base, "Europe", "EGLL"))
	if egll == nil || len(egll.Children) != 2 {
		t.Fatalf("EGLL folder should list both files, got %+v", egll)
	}
}

func TestCreateFolders(t *testing.T) {
	base := t.TempDir()

	top, err := CreateUserFolder(base, "Europe")
	if err != nil {
		t.Fatalf("CreateUserFolder error: %v", err)
	}
	if top != filepath.Join(base, "Europe") || !CheckFolderExists(top) {
		t.Errorf("top = %q", top)
	}

	sub, err := CreateSubfolder(base, top, "EGLL")
	if err != nil {
		t.Fatalf("CreateSubfolder error: %v", err)
	}
	if !CheckFolderExists(sub) {
		t.Error("subfolder should exist")
	}

	rootSub, err := CreateSubfolder(base, tree.RootID, "Asia")
	if err != nil {
		t.Fatal(err)
	}
	if rootSub != filepath.Join(base, "Asia") {
		t.Errorf("root sentinel should map to base, got %q", rootSub)
	}

	for _, bad := range []string{"", "..", "a/b"} {
		if _, err := CreateUserFolder(base, bad); !errors.Is(err, ErrInvalidName) {
			t.Errorf("CreateUserFolder(%q) error = %v, want ErrInvalidName", bad, err)
		}
	}

	if _, err := CreateSubfolder(base, t.TempDir(), "x"); !errors.Is(err, ErrOutsideStore) {
		t.Errorf("parent outside store error = %v, want ErrOutsideStore", err)
	}
}

func TestCopyFileToUserFolder(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(t.TempDir(), "kjfk.ini")
	if err := os.WriteFile(src, []byte("[gsx]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	dst, err := CopyFileToUserFolder(base, src, tree.RootID)
	if err != nil {
		t.Fatalf("copy to root error: %v", err)
	}
	if data, _ := os.ReadFile(dst); string(data) != "[gsx]\n" {
		t.Errorf("copied content = %q", data)
	}

	target := filepath.Join(base, "America", "KJFK")
	dst, err = CopyFileToUserFolder(base, src, target)
	if err != nil {
		t.Fatalf("copy to new folder error: %v", err)
	}
	if dst != filepath.Join(target, "kjfk.ini") {
		t.Errorf("dst = %q", dst)
	}

	if _, err := CopyFileToUserFolder(base, filepath.Join(base, "missing.ini"), tree.RootID); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing source error = %v, want ErrNotFound", err)
	}
	if _, err := CopyFileToUserFolder(base, base, tree.RootID); !errors.Is(err, ErrNotAFile) {
		t.Errorf("directory source error = %v, want ErrNotAFile", err)
	}
}

func TestDeleteUserFolderItem(t *testing.T) {
	base := t.TempDir()
	file := filepath.Join(base, "Europe", "egll.ini")
	touch(t, file)

	if err := DeleteUserFolderItem(base, tree.RootID); !errors.Is(err, ErrRootDelete) {
		t.Errorf("delete root error = %v, want ErrRootDelete", err)
	}
	if err := DeleteUserFolderItem(base, base); !errors.Is(err, ErrRootDelete) {
		t.Errorf("delete base error = %v, want ErrRootDelete", err)
	}

	outside := filepath.Join(t.TempDir(), "keep.ini")
	touch(t, outside)
	if err := DeleteUserFolderItem(base, outside); !errors.Is(err, ErrOutsideStore) {
		t.Errorf("delete outside error = %v, want ErrOutsideStore", err)
	}
	if _, err := os.Stat(outside); err != nil {
		t.Error("file outside the store must survive")
	}

	if err := DeleteUserFolderItem(base, filepath.Join(base, "nope")); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete missing error = %v, want ErrNotFound", err)
	}

	if err := DeleteUserFolderItem(base, file); err != nil {
		t.Fatalf("delete file error: %v", err)
	}
	if err := DeleteUserFolderItem(base, filepath.Join(base, "Europe")); err != nil {
		t.Fatalf("delete folder error: %v", err)
	}
	if CheckFolderExists(filepath.Join(base, "Europe")) {
		t.Error("folder should be gone")
	}
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		base, path string
		want       bool
	}{
		{"/store", "/store", true},
		{"/store", "/store/a/b", true},
		{"/store", "/storefront/a", false},
		{"/store", "/", false},
		{"/store", "/store/../etc", false},
	}
	for _, tt := range tests {
		got, err := isWithin(tt.base, tt.path)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("isWithin(%q, %q) = %v, want %v", tt.base, tt.path, got, tt.want)
		}
	}
}
