package providers

import "unicode/utf8"

// charsPerToken is the length heuristic used when no tokenizer is available
const charsPerToken = 4

// EstimateTokens approximates a token count as one token per four characters,
// rounding up. Empty text has zero tokens.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}
