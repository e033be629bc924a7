package database

import "fmt"

// TableNames holds the prefixed table names for the current environment
type TableNames struct {
	Conversations string
	Prompts       string
	Responses     string
	ContextFiles  string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string) *TableNames {
	return &TableNames{
		Conversations: fmt.Sprintf("%sconversations", prefix),
		Prompts:       fmt.Sprintf("%sprompts", prefix),
		Responses:     fmt.Sprintf("%sresponses", prefix),
		ContextFiles:  fmt.Sprintf("%scontext_files", prefix),
	}
}
