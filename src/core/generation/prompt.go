package generation

import (
	"fmt"
	"strings"

	"corpora/src/llm"
)

// SystemMessage binds the assistant to one tenant's corpus so model
// instructions cannot leak another tenant's documents.
func SystemMessage(tenantID int64) string {
	return fmt.Sprintf("You are the private knowledge base assistant for user %d. "+
		"Answer only from documents uploaded by this user and keep the conversation coherent.", tenantID)
}

// BuildPrompt renders the grounded prompt: numbered retrieved passages,
// and when conversation history is present, the trailing turns rendered
// as role-prefixed lines.
func BuildPrompt(query string, contextDocs []string, history []llm.Message) string {
	blocks := make([]string, 0, len(contextDocs))
	for i, doc := range contextDocs {
		blocks = append(blocks, fmt.Sprintf("Document %d: %s", i+1, doc))
	}
	context := strings.Join(blocks, "\n\n")

	recent := llm.TrimHistory(history)
	if len(recent) == 0 {
		return fmt.Sprintf(`Answer the question based on the following private documents:

%s

Question: %s

Provide an accurate, detailed answer based on the documents above:`, context, query)
	}

	lines := make([]string, 0, len(recent))
	for _, msg := range recent {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}

	return fmt.Sprintf(`Answer the question based on the following private documents and the conversation history:

Conversation history:
%s

Retrieved documents:
%s

Current question: %s

Provide an accurate, detailed answer based on the documents and the conversation history above. If the current question relates to the earlier conversation, take that context into account:`,
		strings.Join(lines, "\n"), context, query)
}
