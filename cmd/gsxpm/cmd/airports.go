package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/gsxpm/internal/scenery"
)

var airportsCmd = &cobra.Command{
	Use:   "airports [folder...]",
	Short: "List airport scenery found in Community folders",
	Long: `Scans the given folders, or the MSFS Community folders found on this
machine, for scenery packages and reports the ICAO code guessed for each.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		folders := args
		if len(folders) == 0 {
			folders = scenery.CommunityFolders()
		}
		airports, err := scenery.Scan(folders)
		if errors.Is(err, scenery.ErrNoCommunity) {
			return fmt.Errorf("no Community folder found; pass one as an argument")
		}
		if err != nil {
			return err
		}
		scenery.ByICAO(airports)

		if ok, err := outputList(airports); ok {
			return err
		}
		if len(airports) == 0 {
			fmt.Println("No airport scenery found")
			return nil
		}
		t := newTable("ICAO", "TITLE", "PATH")
		for _, a := range airports {
			t.AppendRow([]any{a.ICAO, a.Title, a.Path})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(airportsCmd)
}
