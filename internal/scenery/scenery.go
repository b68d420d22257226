// Package scenery finds airport scenery packages in MSFS Community folders and
// guesses their ICAO codes.
package scenery

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
)

// ErrNoCommunity is returned when there is no folder to scan.
var ErrNoCommunity = errors.New("no MSFS Community folders found")

const (
	manifestName = "manifest.json"
	maxDepth     = 3
)

var icaoPattern = regexp.MustCompile(`\b([A-Z][A-Z0-9]{3})\b`)

// notAirports are four-letter words common in package names.
var notAirports = map[string]bool{
	"ORBX": true, "THAT": true, "ONLY": true, "WITH": true, "PAYA": true, "FREE": true,
	"BASE": true, "GATE": true, "SIMX": true, "FLYX": true, "LAND": true, "PORT": true,
	"JETS": true, "RUNX": true, "WAYX": true, "TERM": true, "PARK": true, "LOAD": true,
	"TAXI": true, "LIFT": true, "NAVX": true, "VORX": true, "ILSS": true, "DEPT": true,
	"ARRV": true, "CTRL": true, "ATCX": true, "WXRT": true, "METX": true, "CITY": true,
	"BETA": true, "MSFS": true, "PACK": true, "JEPP": true, "FSDG": true, "FSDT": true,
}

// Airport is one scenery package with the ICAO code found for it.
type Airport struct {
	ICAO  string `json:"icao" yaml:"icao"`
	Title string `json:"title" yaml:"title"`
	Path  string `json:"path" yaml:"path"`
}

type manifest struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
}

// CommunityFolders returns the MSFS 2020 and 2024 Community folders, Store
// and Steam editions, that exist on this machine.
func CommunityFolders() []string {
	local, roaming := appDataDirs()
	var candidates []string
	if local != "" {
		candidates = append(candidates,
			filepath.Join(local, "Packages", "Microsoft.FlightSimulator_8wekyb3d8bbwe", "LocalCache", "Packages", "Community"),
			filepath.Join(local, "Microsoft Flight Simulator", "Packages", "Community"),
			filepath.Join(local, "Packages", "Microsoft.Limitless_8wekyb3d8bbwe", "LocalCache", "Packages", "Community"),
		)
	}
	if roaming != "" {
		candidates = append(candidates,
			filepath.Join(roaming, "Microsoft Flight Simulator", "Packages", "Community"),
			filepath.Join(roaming, "Microsoft Flight Simulator 2024", "Packages", "Community"),
		)
	}

	var found []string
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			found = append(found, c)
		}
	}
	return found
}

func appDataDirs() (local, roaming string) {
	if runtime.GOOS == "windows" {
		return os.Getenv("LOCALAPPDATA"), os.Getenv("APPDATA")
	}
	roaming, _ = os.UserConfigDir()
	if home, err := os.UserHomeDir(); err == nil {
		local = filepath.Join(home, ".local", "share")
	}
	return local, roaming
}

// Scan walks each folder up to three levels deep for scenery manifests and
// returns one Airport per ICAO code, in discovery order. Symlinked package
// folders are followed.
func Scan(folders []string) ([]Airport, error) {
	if len(folders) == 0 {
		return nil, ErrNoCommunity
	}

	var airports []Airport
	seen := make(map[string]bool)

	visit := func(path string) {
		m, ok := readManifest(path)
		if !ok || m.ContentType != "SCENERY" {
			return
		}

		pkgDir := filepath.Dir(path)
		folderTitle := filepath.Base(pkgDir)
		title := m.Title
		if title == "" {
			title = folderTitle
		}

		icao := FindICAO(folderTitle, seen)
		if icao == "" {
			icao = FindICAO(title, seen)
		}
		if icao == "" {
			return
		}
		seen[icao] = true
		airports = append(airports, Airport{ICAO: icao, Title: folderTitle, Path: pkgDir})
	}

	for _, folder := range folders {
		walk(filepath.Clean(folder), 0, make(map[string]bool), visit)
	}
	return airports, nil
}

// walk calls visit for every manifest file within maxDepth levels of dir.
// Directories already open on the walk are skipped so link cycles end.
func walk(dir string, depth int, open map[string]bool, visit func(string)) {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil || open[real] {
		return
	}
	open[real] = true
	defer delete(open, real)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		switch {
		case info.IsDir():
			if depth+1 < maxDepth {
				walk(path, depth+1, open, visit)
			}
		case entry.Name() == manifestName:
			visit(path)
		}
	}
}

// FindICAO returns the first code-shaped word in s that is not a common
// package word and not already in seen.
func FindICAO(s string, seen map[string]bool) string {
	for _, m := range icaoPattern.FindAllStringSubmatch(strings.ToUpper(s), -1) {
		code := m[1]
		if notAirports[code] || seen[code] {
			continue
		}
		return code
	}
	return ""
}

// ByICAO sorts airports by code.
func ByICAO(airports []Airport) {
	sort.Slice(airports, func(i, j int) bool { return airports[i].ICAO < airports[j].ICAO })
}

func readManifest(path string) (manifest, bool) {
	var m manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, false
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, false
	}
	return m, true
}
