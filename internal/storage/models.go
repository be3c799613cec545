package storage

import "time"

// ExtractionRecord is one completed extraction. The uploaded file itself is
// never stored.
type ExtractionRecord struct {
	ID         string        `json:"id"`
	Filename   string        `json:"filename"`
	Format     string        `json:"format"`
	Mode       string        `json:"mode"`
	Skills     []string      `json:"skills"`
	TextLength int           `json:"text_length"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}
