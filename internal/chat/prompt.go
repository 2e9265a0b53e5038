package chat

import (
	"fmt"
	"strings"

	"github.com/zenoharsh/ragserve/internal/knowledge"
)

// systemPrompt instructs the model to answer strictly from the retrieved
// context and to admit when the context is insufficient.
const systemPrompt = "You are a professional AI assistant for the Dattopant Thengadi Foundation. " +
	"Your role is to answer questions accurately and concisely based ONLY on the provided context documents.\n" +
	"If the context does not contain the answer, state that you do not have enough information."

// questionTemplate frames the retrieved context and the user's question for
// the model.
const questionTemplate = "---------------------\n" +
	"CONTEXT: %s\n" +
	"---------------------\n" +
	"QUESTION: %s\n" +
	"ANSWER (be clear and helpful):"

// renderPrompt assembles the user-turn prompt from retrieved chunks and the
// question. With no retrieved chunks the context block is left empty and the
// system prompt steers the model toward admitting it lacks information.
func renderPrompt(results []knowledge.Result, question string) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(r.Document.Content)
	}
	return fmt.Sprintf(questionTemplate, sb.String(), question)
}
