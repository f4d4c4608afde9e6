package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/docs-qa/internal/core/domain"
)

var (
	askTopK    int
	askVerbose bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documentation",
	Long: `Answers the question given as arguments. With no arguments, starts an
interactive session that reads questions from stdin until 'exit' or 'quit'.`,
	Args: cobra.ArbitraryArgs,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of context chunks to retrieve (default from config)")
	askCmd.Flags().BoolVarP(&askVerbose, "verbose", "v", false, "show source URLs and query variants")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if services.Answerer == nil {
		return errors.New("answerer not configured")
	}

	if len(args) > 0 {
		question := strings.Join(args, " ")
		answer, err := services.Answerer.Answer(cmd.Context(), question, askTopK)
		if err != nil {
			return err
		}
		renderAnswer(cmd, answer)
		return nil
	}

	return runInteractiveAsk(cmd)
}

// runInteractiveAsk loops over stdin questions. Per-question failures are
// printed and the session continues; only a broken input stream ends it with
// an error.
func runInteractiveAsk(cmd *cobra.Command) error {
	cmd.Println(answerStyle.Render("Welcome to the documentation QA session.\nEnter your questions below, or type 'exit' to quit."))

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print(headingStyle.Render("Your question") + " > ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if lowered := strings.ToLower(question); lowered == "exit" || lowered == "quit" {
			break
		}

		answer, err := services.Answerer.Answer(cmd.Context(), question, askTopK)
		if err != nil {
			cmd.Println(errStyle.Render("Error: " + err.Error()))
			continue
		}
		renderAnswer(cmd, answer)
	}

	cmd.Println(okStyle.Render("Goodbye!"))
	return scanner.Err()
}

func renderAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answerStyle.Render(answer.Text))

	if len(answer.Sources) > 0 {
		cmd.Println(headingStyle.Render("Understanding the answer"))
		cmd.Println(dimStyle.Render("The answer was generated from these sections of the documentation:"))
		cmd.Println(renderRetrievalAnalysis(answer.Sources))
	}

	if !askVerbose {
		return
	}
	if len(answer.Sources) > 0 {
		cmd.Println(headingStyle.Render("Sources"))
		for _, src := range answer.Sources {
			cmd.Println(dimStyle.Render(fmt.Sprintf("  %s (chunk %d)", src.SourceURL, src.ChunkIndex)))
		}
	}
	if len(answer.Variants) > 0 {
		cmd.Println(headingStyle.Render("Query variants"))
		for _, variant := range answer.Variants {
			cmd.Println(dimStyle.Render("  " + variant))
		}
	}
}
