package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"resume-skills/internal/cv"
	"resume-skills/internal/llm"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{cv.ErrNoFileProvided, http.StatusBadRequest},
		{eris.Wrap(cv.ErrUnsupportedFormat, "resume.txt"), http.StatusBadRequest},
		{eris.Wrapf(cv.ErrCorruptDocument, "pdf: %v", "eof"), http.StatusBadRequest},
		{cv.ErrUnknownMode, http.StatusBadRequest},
		{eris.Wrap(cv.ErrVocabularyUnavailable, "read"), http.StatusInternalServerError},
		{cv.ErrVocabularySchema, http.StatusInternalServerError},
		{eris.Wrap(llm.ErrProviderTransport, "status 500"), http.StatusBadGateway},
		{llm.ErrNotConfigured, http.StatusServiceUnavailable},
		{eris.Wrap(&http.MaxBytesError{Limit: 10}, "file too large"), http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
