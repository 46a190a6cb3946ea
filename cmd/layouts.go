package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/photobook/internal/layout"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List the page layout templates",
	Args:  cobra.NoArgs,
	RunE:  runLayouts,
}

func init() {
	rootCmd.AddCommand(layoutsCmd)

	layoutsCmd.Flags().Bool("json", false, "Output as JSON")
}

func runLayouts(cmd *cobra.Command, args []string) error {
	templates := layout.All()

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	}

	fmt.Printf("%-16s %-28s %s\n", "ID", "NAME", "PHOTOS")
	for _, t := range templates {
		fmt.Printf("%-16s %-28s %d\n", t.ID, t.Name, len(t.Slots))
	}
	return nil
}
