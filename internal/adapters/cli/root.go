package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kirillkom/docs-qa/internal/core/ports"
)

// Services holds the wired application ports the commands run against.
type Services struct {
	Ingestor ports.PageIngestor
	Answerer ports.QuestionAnswerer
	Repo     ports.ChunkRepository
}

var services Services

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Documentation question answering",
	Long: `docqa crawls documentation pages into a searchable knowledge base
and answers questions grounded in the indexed content.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute wires the services and runs the CLI.
func Execute(ctx context.Context, svc Services) error {
	services = svc
	return rootCmd.ExecuteContext(ctx)
}
