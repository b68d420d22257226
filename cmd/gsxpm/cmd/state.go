package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tormodhaugland/gsxpm/internal/tui"
)

var stateFormat string

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show or clear the saved view state",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved folder, selection and open folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, err := loadState()
		if err != nil {
			return err
		}
		if jsonOut || stateFormat == "json" {
			return outputJSON(st)
		}
		if stateFormat == "yaml" {
			out, err := yaml.Marshal(st)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		}

		folder := st.Folder()
		if folder == "" {
			folder = "(none)"
		}
		fmt.Printf("State file:     %s\n", cfg.StatePath())
		fmt.Printf("Watched folder: %s\n", folder)
		printIDs("Selected", st.SelectedFiles.Strings())
		printIDs("Expanded", st.ExpandedIDs.Strings())
		printIDs("Local expanded", st.LocalExpandedIDs.Strings())
		return nil
	},
}

var (
	stateClearYes bool
)

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the watched folder, selection and open folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !stateClearYes && !jsonOut {
			confirm, err := tui.RunConfirm("Clear the saved state?", cfg.StatePath())
			if err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
			if !confirm.Confirmed {
				fmt.Println("Cancelled")
				return nil
			}
		}
		if err := openStore().Clear(); err != nil {
			return fmt.Errorf("failed to clear state: %w", err)
		}
		if jsonOut {
			return outputJSON(map[string]any{"cleared": true})
		}
		fmt.Println("State cleared")
		return nil
	},
}

func printIDs(label string, ids []string) {
	fmt.Printf("%s (%d):\n", label, len(ids))
	if len(ids) == 0 {
		return
	}
	fmt.Println("  " + strings.Join(ids, "\n  "))
}

func init() {
	stateShowCmd.Flags().StringVar(&stateFormat, "format", "text", "output format (text, json, yaml)")
	stateClearCmd.Flags().BoolVarP(&stateClearYes, "yes", "y", false, "do not ask for confirmation")
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateClearCmd)
	rootCmd.AddCommand(stateCmd)
}
