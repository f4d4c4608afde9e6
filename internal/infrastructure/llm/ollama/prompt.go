package ollama

import (
	"fmt"
	"strings"

	"github.com/kirillkom/docs-qa/internal/core/domain"
)

const answerSystemPrompt = `You are a specialized question-answering assistant that ONLY uses the provided context to answer questions.

IMPORTANT RULES:
1. ONLY use information explicitly stated in the provided context
2. If the answer cannot be found in the context, say 'I cannot find the answer in the provided context'
3. NEVER use any external knowledge or assumptions
4. DO NOT make up or infer information that is not directly stated
5. Provide comprehensive answers that cover all relevant information from the context
6. Use markdown formatting to improve readability:
   - Use bullet points for lists of items, features, or steps
   - Use numbered lists for sequential steps or prioritized items
   - Use bold for important terms or concepts
   - Use headings to organize long answers into sections
7. Include relevant source citations when possible, formatted as [Source: URL]
8. If multiple sources provide complementary information, combine them into a complete answer
9. If sources provide conflicting information, note the discrepancy and cite both sources`

func buildAnswerPrompt(question string, chunks []domain.RetrievedChunk) string {
	blocks := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		blocks = append(blocks, fmt.Sprintf(
			"[Source: %s | %s]\n%s",
			chunk.SourceURL,
			chunk.HeadingPath,
			chunk.Text,
		))
	}

	return fmt.Sprintf(
		"Context information is below:\n---------------------\n%s\n---------------------\nUsing ONLY the information in the context above, answer this question: %s",
		strings.Join(blocks, "\n\n"),
		question,
	)
}
