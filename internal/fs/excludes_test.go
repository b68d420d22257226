package fs

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func hasPattern(list *ExcludeList, pattern string) bool {
	for _, p := range list.Patterns {
		if p == pattern {
			return true
		}
	}
	return false
}

func TestBuildExcludeListDefaults(t *testing.T) {
	list := BuildExcludeList(ExcludeOptions{})

	for _, want := range []string{".git/", "_backup_profiles_*/", ".DS_Store", "*.bak"} {
		if !hasPattern(list, want) {
			t.Errorf("Expected %s in default excludes", want)
		}
	}
}

func TestBuildExcludeListKeepBackups(t *testing.T) {
	list := BuildExcludeList(ExcludeOptions{KeepBackups: true})

	if hasPattern(list, "*.bak") {
		t.Error("Expected *.bak to be dropped when KeepBackups is true")
	}
}

func TestBuildExcludeListRemoveAndAdditional(t *testing.T) {
	list := BuildExcludeList(ExcludeOptions{
		Remove:     []string{".git/"},
		Additional: []string{"Old Profiles/", "Old Profiles/", "*.orig"},
	})

	if hasPattern(list, ".git/") {
		t.Error("Expected .git/ to be removed")
	}
	count := 0
	for _, p := range list.Patterns {
		if p == "Old Profiles/" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected Old Profiles/ exactly once, found %d", count)
	}
	if !hasPattern(list, "*.orig") {
		t.Error("Expected *.orig in excludes")
	}
}

func TestExcludeListMatch(t *testing.T) {
	list := BuildExcludeList(ExcludeOptions{})

	tests := []struct {
		name  string
		isDir bool
		want  bool
	}{
		{".git", true, true},
		{".git", false, false},
		{"_backup_profiles_20240101", true, true},
		{"Thumbs.db", false, true},
		{"profile.ini.swp", false, true},
		{".gsxpmignore", false, true},
		{"GSX Profile", true, false},
		{"EGLL.ini", false, false},
		{"fsdreamteam-egll", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := list.Match(tt.name, tt.isDir); got != tt.want {
				t.Errorf("Match(%q, %v) = %v, want %v", tt.name, tt.isDir, got, tt.want)
			}
		})
	}

	var nilList *ExcludeList
	if nilList.Match(".git", true) {
		t.Error("nil list should match nothing")
	}
}

func TestParseExcludeFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, IgnoreFileName)
	content := "# comment line\nlegacy/\n \n# another\n*.old\n drafts/\n!*.bak\n!\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := ParseExcludeFile(path)
	if err != nil {
		t.Fatalf("ParseExcludeFile returned error: %v", err)
	}

	want := IgnoreRules{Add: []string{"legacy/", "*.old", "drafts/"}, Remove: []string{"*.bak"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseExcludeFile() = %+v, want %+v", got, want)
	}
}

func TestParseExcludeFileNotFound(t *testing.T) {
	_, err := ParseExcludeFile("/nonexistent/path/file.txt")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestExcludesForFolder(t *testing.T) {
	tmp := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmp, IgnoreFileName), []byte("legacy/\n!*.bak\n"), 0644); err != nil {
		t.Fatal(err)
	}

	list := ExcludesForFolder(tmp)
	if !list.Match("legacy", true) {
		t.Error("Expected ignore file pattern to apply")
	}
	if list.Match("EGLL.ini.bak", false) {
		t.Error("Expected !*.bak to re-include backup files")
	}
	if !ExcludesForFolder(t.TempDir()).Match(".git", true) {
		t.Error("Expected builtin patterns without an ignore file")
	}
}
