package config

const (
	// MaxPromptLength is the maximum prompt length in characters.
	MaxPromptLength = 100_000

	// MaxContextFiles is the maximum number of context files per prompt.
	MaxContextFiles = 10

	// MaxConversationTitleLength bounds titles derived from the first prompt.
	MaxConversationTitleLength = 50

	// MaxTemperature is the upper bound accepted for sampling temperature.
	MaxTemperature = 2.0

	// DefaultMaxOutputTokens is used when the caller does not set max tokens
	// and the provider requires one.
	DefaultMaxOutputTokens = 4096
)
