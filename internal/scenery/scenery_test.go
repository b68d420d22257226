package scenery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, manifestName), []byte(body), 0644))
}

func TestScan(t *testing.T) {
	community := t.TempDir()
	writeManifest(t, filepath.Join(community, "fsdt-egll-heathrow"), `{"content_type":"SCENERY","title":"London Heathrow"}`)
	writeManifest(t, filepath.Join(community, "orbx-landmarks"), `{"content_type":"SCENERY","title":"Airport KSEA Seattle"}`)
	writeManifest(t, filepath.Join(community, "another-egll"), `{"content_type":"SCENERY","title":"EGLL again"}`)
	writeManifest(t, filepath.Join(community, "a320-livery-dlh1"), `{"content_type":"LIVERY","title":"DLH1"}`)
	writeManifest(t, filepath.Join(community, "broken-lfpg"), `{not json`)
	writeManifest(t, filepath.Join(community, "group", "pack-lowi"), `{"content_type":"SCENERY"}`)
	writeManifest(t, filepath.Join(community, "x", "y", "z", "deep-eddm"), `{"content_type":"SCENERY"}`)

	airports, err := Scan([]string{community})
	require.NoError(t, err)

	ByICAO(airports)
	var codes []string
	for _, a := range airports {
		codes = append(codes, a.ICAO)
	}
	assert.Equal(t, []string{"EGLL", "KSEA", "LOWI"}, codes)

	for _, a := range airports {
		if a.ICAO == "KSEA" {
			assert.Equal(t, "orbx-landmarks", a.Title, "title is the folder name even when the code came from the manifest")
			assert.Equal(t, filepath.Join(community, "orbx-landmarks"), a.Path)
		}
	}
}

func TestScanFollowsLinkedPackages(t *testing.T) {
	base := t.TempDir()
	pkg := filepath.Join(base, "addons", "fsdt-kjfk")
	writeManifest(t, pkg, `{"content_type":"SCENERY","title":"New York JFK"}`)
	community := filepath.Join(base, "Community")
	require.NoError(t, os.MkdirAll(community, 0755))
	if err := os.Symlink(pkg, filepath.Join(community, "fsdt-kjfk")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(community, filepath.Join(pkg, "loop")))

	airports, err := Scan([]string{community})
	require.NoError(t, err)
	require.Len(t, airports, 1)
	assert.Equal(t, "KJFK", airports[0].ICAO)
	assert.Equal(t, filepath.Join(community, "fsdt-kjfk"), airports[0].Path)
}

func TestScanWithoutFolders(t *testing.T) {
	_, err := Scan(nil)
	assert.ErrorIs(t, err, ErrNoCommunity)
}

func TestFindICAO(t *testing.T) {
	tests := []struct {
		in   string
		seen map[string]bool
		want string
	}{
		{"fsdt-kjfk", nil, "KJFK"},
		{"orbx-ybbn-brisbane", nil, "YBBN"},
		{"FREE GATE pack", nil, ""},
		{"egll-and-eglc", map[string]bool{"EGLL": true}, "EGLC"},
		{"my add-on", nil, ""},
		{"1abc", nil, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FindICAO(tt.in, tt.seen), tt.in)
	}
}
