// Package prompt builds the final prompt sent to the language model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/boneycanute/bare-bones-chat/internal/domain"
)

const analyzeInstruction = "Please analyze the above content and respond to the user's question."

// BuildContext renders retrieved snippets as a numbered context block.
func BuildContext(snippets []domain.Snippet) string {
	if len(snippets) == 0 {
		return "No contextual information found."
	}
	blocks := make([]string, 0, len(snippets))
	for i, s := range snippets {
		blocks = append(blocks, fmt.Sprintf("Context Source %d:\n%s\n", i+1, s.Content))
	}
	return strings.Join(blocks, "\n")
}

// BuildFileContents renders decoded file texts, each labeled with its
// originating file name.
func BuildFileContents(files []domain.FileContent) string {
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "Content from %s:\n%s\n\n", f.Name, f.Text)
	}
	return b.String()
}

// Compose combines retrieved context, uploaded file contents and the user's
// message into the full model prompt. With neither context nor files the raw
// message is returned unmodified.
func Compose(snippets []domain.Snippet, files []domain.FileContent, message string) string {
	fileContents := BuildFileContents(files)

	if len(snippets) > 0 {
		return fmt.Sprintf("Context:\n%s\n\nUser Question: %s\n\n%s\n\n%s",
			BuildContext(snippets), message, fileContents, analyzeInstruction)
	}
	if fileContents != "" {
		return fmt.Sprintf("User Question: %s\n\n%s\n\n%s",
			message, fileContents, analyzeInstruction)
	}
	return message
}
