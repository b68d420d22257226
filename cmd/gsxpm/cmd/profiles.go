package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/gsxpm/internal/profile"
	"github.com/tormodhaugland/gsxpm/internal/profiledb"
	"github.com/tormodhaugland/gsxpm/internal/scenery"
)

var (
	profContinent string
	profCountry   string
	profICAO      string
	profDeveloper string
	profVersion   string
	profZip       bool
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage the catalogue of uploaded profiles",
	Long: `Uploaded profiles are filed under continent/country/ICAO/developer/version
in the data dir and recorded in a SQLite catalogue.`,
}

var profilesAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Add a profile file, or every profile in a ZIP with --zip",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := args[0]
		icao := profICAO
		if icao == "" {
			icao = guessICAO(src)
			if icao == "" {
				return fmt.Errorf("--icao is required; no ICAO code found in %s", src)
			}
			log.WithField("icao", icao).Info("Using ICAO code found in the file path")
		}

		files, err := readUploads(src)
		if err != nil {
			return err
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		var stored []profiledb.Profile
		for _, f := range files {
			p, err := profile.Store(db, cfg.ProfilesPath(), profile.Upload{
				Continent: profContinent,
				Country:   profCountry,
				ICAO:      icao,
				Developer: profDeveloper,
				Version:   profVersion,
				FileName:  f.Name,
				Content:   f.Content,
			})
			if err != nil {
				return fmt.Errorf("storing %s: %w", f.Name, err)
			}
			stored = append(stored, *p)
		}

		if ok, err := outputList(stored); ok {
			return err
		}
		for _, p := range stored {
			fmt.Printf("Stored %s\n", p.FilePath)
		}
		return nil
	},
}

var profilesLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		profiles, err := db.List(profiledb.Filter{ICAO: profICAO, Country: profCountry, Continent: profContinent})
		if err != nil {
			return err
		}
		if ok, err := outputList(profiles); ok {
			return err
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles stored")
			return nil
		}
		t := newTable("ICAO", "COUNTRY", "CONTINENT", "DEVELOPER", "VERSION", "FILE")
		for _, p := range profiles {
			t.AppendRow([]any{p.ICAO, p.Country, p.Continent, p.Developer, p.Version, filepath.Base(p.FilePath)})
		}
		t.Render()
		return nil
	},
}

var profilesRmCmd = &cobra.Command{
	Use:   "rm <file>",
	Short: "Delete a stored profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := profile.Remove(db, path); err != nil {
			if errors.Is(err, profiledb.ErrNotFound) {
				return fmt.Errorf("no stored profile at %s", path)
			}
			return err
		}
		if jsonOut {
			return outputJSON(map[string]string{"deleted": path})
		}
		fmt.Printf("Deleted %s\n", path)
		return nil
	},
}

// readUploads returns the profile files to store from src.
func readUploads(src string) ([]profile.ZipFile, error) {
	if !profZip {
		if !profile.IsProfileFile(src) {
			return nil, fmt.Errorf("%s is not a .ini or .py profile", src)
		}
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, err
		}
		return []profile.ZipFile{{Name: filepath.Base(src), Content: data}}, nil
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return profile.ExtractZip(f, info.Size())
}

// guessICAO looks for a code in the file name, then in the three folders
// above it, which covers <package>/GSX Profile/<file>.
func guessICAO(src string) string {
	abs, err := filepath.Abs(src)
	if err != nil {
		abs = src
	}
	name := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	if code := scenery.FindICAO(name, nil); code != "" {
		return code
	}
	dir := filepath.Dir(abs)
	for i := 0; i < 3 && dir != filepath.Dir(dir); i, dir = i+1, filepath.Dir(dir) {
		if code := scenery.FindICAO(filepath.Base(dir), nil); code != "" {
			return code
		}
	}
	return ""
}

func init() {
	for _, c := range []*cobra.Command{profilesAddCmd, profilesLsCmd} {
		c.Flags().StringVar(&profContinent, "continent", "", "continent")
		c.Flags().StringVar(&profCountry, "country", "", "country")
		c.Flags().StringVar(&profICAO, "icao", "", "airport ICAO code")
	}
	profilesAddCmd.Flags().StringVar(&profDeveloper, "developer", "", "scenery developer")
	profilesAddCmd.Flags().StringVar(&profVersion, "version", "", "profile version")
	profilesAddCmd.Flags().BoolVar(&profZip, "zip", false, "the file is a ZIP archive of profiles")
	_ = profilesAddCmd.MarkFlagRequired("continent")
	_ = profilesAddCmd.MarkFlagRequired("country")

	profilesCmd.AddCommand(profilesAddCmd, profilesLsCmd, profilesRmCmd)
	rootCmd.AddCommand(profilesCmd)
}
