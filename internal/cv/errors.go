package cv

import "errors"

// Extraction failures. Callers match them with errors.Is; the wrapped
// message carries the detail.
var (
	ErrNoFileProvided        = errors.New("no file uploaded")
	ErrUnsupportedFormat     = errors.New("unsupported file type")
	ErrCorruptDocument       = errors.New("document could not be opened")
	ErrVocabularyUnavailable = errors.New("skill vocabulary unavailable")
	ErrVocabularySchema      = errors.New("skill vocabulary must be a JSON array of strings")
	ErrUnknownMode           = errors.New("unknown extraction mode")
)
