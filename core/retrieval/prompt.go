package retrieval

import (
	"fmt"
	"strings"

	"github.com/siherrmann/vaultgraph/core/pipeline"
	"github.com/siherrmann/vaultgraph/model"
)

// SystemPrompt constrains the generator to the supplied context and asks for
// the SOURCES trailer that ParseAttribution reads.
const SystemPrompt = `You are The Analyst.
Your goal is to answer the user's question based ONLY on the provided context.

Instructions:
1. Synthesize the information from the context files.
2. ALWAYS ANSWER IN ENGLISH. Do not use any other language.
3. If the answer is in the context, provide a clear, natural language response.
4. If the answer is NOT in the context, politely say you don't know based on the available files.
5. Do not mention "File 1" or specific pages unless necessary for citation.
6. Be helpful, professional, and concise.
7. AT THE VERY END of your response, STRICTLY append a list of the exact filenames used, in this format: "SOURCES: [filename1, filename2]".
8. If no files were used, output "SOURCES: []".`

const (
	noSearchResultsFormat = "I couldn't find any documents relevant to %q. Try using different keywords."
	noChatResultsFormat   = "I couldn't find any documents relevant to %q, so I can't answer that from the available files."
)

// BuildContext renders the relevant documents as context blocks for the generator.
// Each block holds at most snippetLen runes of the document text.
func BuildContext(relevant []model.ScoredDocument, snippetLen int) string {
	var b strings.Builder
	for _, s := range relevant {
		fmt.Fprintf(&b, "\n--- File: %s (Relevance: %.1f%%) ---\n%s\n",
			s.Document.Name, s.Score*100, pipeline.Truncate(s.Document.TextValue(), snippetLen))
	}
	return b.String()
}

// FormatSearchResults renders the finder listing shown in search mode.
func FormatSearchResults(query string, relevant []model.ScoredDocument, snippetLen int) string {
	if len(relevant) == 0 {
		return fmt.Sprintf(noSearchResultsFormat, query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found **%d** relevant files for %q:\n\n", len(relevant), query)
	for i, s := range relevant {
		fmt.Fprintf(&b, "**%d. %s** (%.0f%% match)\n", i+1, s.Document.Name, s.Score*100)
		if s.Document.HasText() {
			snippet := strings.ReplaceAll(pipeline.Truncate(s.Document.TextValue(), snippetLen), "\n", " ")
			fmt.Fprintf(&b, "> *\"%s...\"*\n\n", snippet)
		}
	}
	return b.String()
}

func noRelevantAnswer(query string) string {
	return fmt.Sprintf(noChatResultsFormat, query)
}
