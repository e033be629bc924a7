package llm

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Conversation groups an ordered sequence of prompts and their responses
type Conversation struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const titleEllipsis = "..."

// TitleFromPrompt derives a conversation title from the first prompt.
// Whitespace runs are collapsed; titles longer than maxLen runes are cut
// and end with "..." so the result never exceeds maxLen runes.
func TitleFromPrompt(prompt string, maxLen int) string {
	title := strings.Join(strings.Fields(prompt), " ")
	if utf8.RuneCountInString(title) <= maxLen {
		return title
	}

	keep := maxLen - utf8.RuneCountInString(titleEllipsis)
	if keep <= 0 {
		return string([]rune(title)[:maxLen])
	}
	runes := []rune(title)[:keep]
	return strings.TrimRight(string(runes), " ") + titleEllipsis
}
