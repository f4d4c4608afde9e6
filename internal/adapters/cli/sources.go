package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List indexed pages and their chunk counts",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, _ []string) error {
	if services.Repo == nil {
		return errors.New("repository not configured")
	}

	stats, err := services.Repo.SourceStats(cmd.Context())
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		cmd.Println(dimStyle.Render("No pages indexed yet."))
		return nil
	}

	cmd.Println(headingStyle.Render("Indexed pages"))
	total := 0
	for _, stat := range stats {
		cmd.Println(fmt.Sprintf("  %4d  %s", stat.Chunks, stat.SourceURL))
		total += stat.Chunks
	}
	cmd.Println(dimStyle.Render(fmt.Sprintf("%d chunks across %d pages", total, len(stats))))
	return nil
}
