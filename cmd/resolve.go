package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"wfmu/internal/extract"
	"wfmu/internal/show"
)

var flagResolveJSON bool

var resolveCmd = &cobra.Command{
	Use:   "resolve N",
	Short: "Print the playable URL of show N",
	Long: `Resolve show N (as numbered by "wfmu list") to a stream URL using the
player page, then the playlist file, then the URLs stored in the snapshot.`,
	Args: cobra.ExactArgs(1),
	RunE: resolveRun,
}

func init() {
	resolveCmd.Flags().BoolVarP(&flagResolveJSON, "json", "j", false, "Output the entry and resolved URL as JSON")
}

// resolveOutput is the --json shape.
type resolveOutput struct {
	Entry show.Entry `json:"entry"`
	extract.Result
}

func resolveRun(cmd *cobra.Command, args []string) error {
	snap, err := loadSnapshot()
	if err != nil {
		return err
	}
	e, err := entryArg(snap.Playlists, args[0])
	if err != nil {
		return err
	}

	res := newResolver(newFetcher()).Resolve(cmd.Context(), e)
	out := cmd.OutOrStdout()

	if flagResolveJSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(resolveOutput{Entry: e, Result: res})
	}

	if !res.Found() {
		return fmt.Errorf("no playable URL found for %s", e.Label())
	}
	fmt.Fprintln(out, res.URL)
	return nil
}
