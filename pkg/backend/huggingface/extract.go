package huggingface

import "strings"

const (
	// emptyReply stands in when the model generates nothing usable.
	emptyReply = "I'm not sure how to respond to that."

	// malformedReply stands in when the response is not the expected shape.
	malformedReply = "I didn't get a proper response. Please try again."
)

// Extract normalizes the hosted API's reply shape into a single display
// string. A leading echo of the prompt is stripped, surrounding whitespace
// trimmed, and empty or malformed results replaced with placeholders.
// Extract never fails.
func Extract(prompt string, gens []Generation) string {
	if len(gens) == 0 {
		return malformedReply
	}

	text := strings.TrimSpace(strings.TrimPrefix(gens[0].GeneratedText, prompt))
	if text == "" {
		return emptyReply
	}
	return text
}
