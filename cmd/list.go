package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"wfmu/internal/provider"
)

var flagListJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the shows in the snapshot",
	Args:  cobra.NoArgs,
	RunE:  listRun,
}

func init() {
	listCmd.Flags().BoolVarP(&flagListJSON, "json", "j", false, "Print the snapshot as JSON")
}

func listRun(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if flagListJSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	fmt.Fprintf(out, "%s (updated %s)\n", snap.SourceURL, snap.LastUpdated)
	for i, e := range snap.Playlists {
		fmt.Fprintln(out, provider.FormatDisplayTitle(i, e))
	}
	return nil
}
