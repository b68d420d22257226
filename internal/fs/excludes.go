package fs

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is read from the root of a watched folder and adds patterns to
// the scan's exclude list.
const IgnoreFileName = ".gsxpmignore"

// BuiltinExcludes contains the default patterns skipped while scanning a
// watched folder or the local store. Directory patterns end in "/".
var BuiltinExcludes = []string{
	// === Version control ===
	".git/",
	".svn/",
	".hg/",

	// === Tooling leftovers inside add-on packages ===
	"node_modules/",
	"__pycache__/",
	".cache/",
	".idea/",
	".vscode/",

	// === Our own artifacts ===
	"_backup_profiles_*/",
	".gsxpm*",

	// === Editor backups ===
	"*.swp",
	"*.swo",
	"*~",
	"*.bak",
	"*.tmp",

	// === OS artifacts ===
	".DS_Store",
	"Thumbs.db",
	"Desktop.ini",
	"$RECYCLE.BIN/",
	"System Volume Information/",
}

// ExcludeList holds the computed effective exclude list.
type ExcludeList struct {
	Patterns []string
}

// ExcludeOptions configures how the exclude list is built.
type ExcludeOptions struct {
	// Additional patterns to add
	Additional []string
	// Patterns to remove from defaults
	Remove []string
	// KeepBackups shows "*.bak" files, which some developers ship as profiles.
	KeepBackups bool
}

// BuildExcludeList computes the effective exclude list from all sources.
func BuildExcludeList(opts ExcludeOptions) *ExcludeList {
	drop := append([]string(nil), opts.Remove...)
	if opts.KeepBackups {
		drop = append(drop, "*.bak")
	}

	list := &ExcludeList{}
	for _, p := range BuiltinExcludes {
		if !containsName(drop, p) {
			list.add(p)
		}
	}
	for _, p := range opts.Additional {
		list.add(p)
	}
	return list
}

// ExcludesForFolder builds the default list plus the rules in the folder's
// ignore file. A missing or unreadable ignore file is ignored.
func ExcludesForFolder(folder string) *ExcludeList {
	rules, err := ParseExcludeFile(filepath.Join(folder, IgnoreFileName))
	if err != nil {
		return BuildExcludeList(ExcludeOptions{})
	}
	return BuildExcludeList(ExcludeOptions{Additional: rules.Add, Remove: rules.Remove})
}

func (e *ExcludeList) add(pattern string) {
	if !containsName(e.Patterns, pattern) {
		e.Patterns = append(e.Patterns, pattern)
	}
}

// Match reports whether an entry with the given base name is excluded.
// Directory patterns only match directories; other patterns match both.
func (e *ExcludeList) Match(name string, isDir bool) bool {
	if e == nil {
		return false
	}
	for _, p := range e.Patterns {
		if dir, ok := strings.CutSuffix(p, "/"); ok {
			if !isDir {
				continue
			}
			p = dir
		}
		if p == name {
			return true
		}
		if ok, err := filepath.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// IgnoreRules are the patterns read from an ignore file. A line starting with
// "!" re-includes a builtin pattern instead of adding one.
type IgnoreRules struct {
	Add    []string
	Remove []string
}

// ParseExcludeFile reads ignore rules from path. Blank lines and lines
// starting with # are skipped.
func ParseExcludeFile(path string) (IgnoreRules, error) {
	var rules IgnoreRules
	f, err := os.Open(path)
	if err != nil {
		return rules, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "", strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "!"):
			if p := strings.TrimSpace(line[1:]); p != "" {
				rules.Remove = append(rules.Remove, p)
			}
		default:
			rules.Add = append(rules.Add, line)
		}
	}
	return rules, sc.Err()
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
