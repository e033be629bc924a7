package llm

import "time"

// ContextFile is a previously uploaded document whose text can be spliced
// into a prompt. Prompts reference it weakly (deleting the file nulls the
// reference).
type ContextFile struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Size        int64     `json:"size" db:"size"`
	ContentType string    `json:"content_type" db:"content_type"`
	StoragePath string    `json:"storage_path" db:"storage_path"`
	UploadedAt  time.Time `json:"uploaded_at" db:"uploaded_at"`
}
