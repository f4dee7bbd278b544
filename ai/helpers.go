package ai

import (
	"strings"
	"unicode/utf8"
)

// CleanResponse flattens the model output into a single chat-safe line of at
// most maxChars runes. maxChars <= 0 disables truncation.
func CleanResponse(resp string, maxChars int) string {
	// remove any newlines
	resp = strings.ReplaceAll(resp, "\r", " ")
	resp = strings.ReplaceAll(resp, "\n", " ")
	resp = strings.ReplaceAll(resp, "<|im_start|>", "")
	resp = strings.ReplaceAll(resp, "<|im_end|>", "")
	resp = strings.Join(strings.Fields(resp), " ")
	resp = strings.Trim(resp, `"`)
	// remove any leading ! or / so that we dont trigger commands
	resp = strings.TrimLeft(resp, "!/ ")

	if maxChars > 0 && utf8.RuneCountInString(resp) > maxChars {
		r := []rune(resp)
		resp = strings.TrimSpace(string(r[:maxChars-1])) + "…"
	}
	return strings.TrimSpace(resp)
}
