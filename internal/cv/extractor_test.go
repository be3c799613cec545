package cv

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-skills/internal/llm"
)

type stubLLM struct {
	skills []string
	err    error
	calls  int
	text   string
}

func (s *stubLLM) ExtractSkills(_ context.Context, text string) ([]string, error) {
	s.calls++
	s.text = text
	return s.skills, s.err
}

type recordingSink struct {
	mu      sync.Mutex
	records []*Result
	names   []string
}

func (s *recordingSink) Record(filename string, res *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = append(s.names, filename)
	s.records = append(s.records, res)
}

func newTestExtractor(t *testing.T, vocab string, llmExtractor SkillExtractor, sink ResultSink) *Extractor {
	t.Helper()
	return NewExtractor(
		NewCVParser(""),
		NewVocabularyStore(writeVocabulary(t, vocab), true),
		NewMatcher(false),
		llmExtractor,
		sink,
	)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeDeterministic, mode)

	mode, err = ParseMode("llm")
	require.NoError(t, err)
	assert.Equal(t, ModeLLM, mode)

	_, err = ParseMode("magic")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestHandle_Deterministic(t *testing.T) {
	sink := &recordingSink{}
	e := newTestExtractor(t, `["Java", "Go", "SQL", "Rust"]`, nil, sink)

	data := buildDocx(t, "", "Experienced in Java, Go, and SQL.")
	res, err := e.Handle(context.Background(), Upload{Filename: "resume.docx", Content: bytes.NewReader(data)}, ModeDeterministic)
	require.NoError(t, err)

	assert.Equal(t, []string{"Java", "Go", "SQL"}, res.Skills)
	assert.Equal(t, ModeDeterministic, res.Mode)
	assert.Equal(t, FormatDOCX, res.Format)
	assert.Equal(t, len("Experienced in Java, Go, and SQL."), res.TextLength)

	require.Len(t, sink.records, 1)
	assert.Equal(t, "resume.docx", sink.names[0])
	assert.Same(t, res, sink.records[0])
}

func TestHandle_NoMatches(t *testing.T) {
	e := newTestExtractor(t, `["Rust"]`, nil, nil)

	data := buildDocx(t, "", "Gardening and cooking")
	res, err := e.Handle(context.Background(), Upload{Filename: "resume.docx", Content: bytes.NewReader(data)}, ModeDeterministic)
	require.NoError(t, err)
	assert.NotNil(t, res.Skills)
	assert.Empty(t, res.Skills)
}

func TestHandle_EmptyUploadBeforeFormat(t *testing.T) {
	e := newTestExtractor(t, `["Java"]`, nil, nil)

	// .txt would be unsupported, but the empty upload is reported first.
	_, err := e.Handle(context.Background(), Upload{Filename: "resume.txt", Content: bytes.NewReader(nil)}, ModeDeterministic)
	assert.ErrorIs(t, err, ErrNoFileProvided)

	_, err = e.Handle(context.Background(), Upload{Filename: "resume.pdf"}, ModeLLM)
	assert.ErrorIs(t, err, ErrNoFileProvided)
}

func TestHandle_UnsupportedFormat(t *testing.T) {
	e := newTestExtractor(t, `["Java"]`, nil, nil)

	_, err := e.Handle(context.Background(), Upload{Filename: "resume.txt", Content: strings.NewReader("Java")}, ModeDeterministic)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestHandle_UnknownMode(t *testing.T) {
	e := newTestExtractor(t, `["Java"]`, nil, nil)

	_, err := e.Handle(context.Background(), Upload{Filename: "resume.docx", Content: strings.NewReader("x")}, Mode("fuzzy"))
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestHandle_CorruptDocument(t *testing.T) {
	e := newTestExtractor(t, `["Java"]`, nil, nil)

	_, err := e.Handle(context.Background(), Upload{Filename: "resume.docx", Content: strings.NewReader("garbage")}, ModeDeterministic)
	assert.ErrorIs(t, err, ErrCorruptDocument)
}

func TestHandle_VocabularyUnavailable(t *testing.T) {
	e := NewExtractor(NewCVParser(""), NewVocabularyStore("/nonexistent/skills.json", true), NewMatcher(false), nil, nil)

	data := buildDocx(t, "", "Java")
	_, err := e.Handle(context.Background(), Upload{Filename: "resume.docx", Content: bytes.NewReader(data)}, ModeDeterministic)
	assert.ErrorIs(t, err, ErrVocabularyUnavailable)
}

func TestHandle_LLM(t *testing.T) {
	stub := &stubLLM{skills: []string{"Python", "SQL", "python"}}
	e := newTestExtractor(t, `[]`, stub, nil)
	e.parser = fakePDF("Python and SQL")

	res, err := e.Handle(context.Background(), Upload{Filename: "resume.pdf", Content: strings.NewReader("%PDF-1.4")}, ModeLLM)
	require.NoError(t, err)

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "Python and SQL", stub.text)
	assert.Equal(t, []string{"Python", "SQL"}, res.Skills)
	assert.Equal(t, FormatPDF, res.Format)
}

func TestHandle_LLMSentinelPassesThrough(t *testing.T) {
	stub := &stubLLM{skills: []string{llm.SentinelSkill}}
	e := newTestExtractor(t, `[]`, stub, nil)
	e.parser = fakePDF("text")

	res, err := e.Handle(context.Background(), Upload{Filename: "resume.pdf", Content: strings.NewReader("%PDF")}, ModeLLM)
	require.NoError(t, err)
	assert.Equal(t, []string{llm.SentinelSkill}, res.Skills)
}

func TestHandle_LLMError(t *testing.T) {
	stub := &stubLLM{err: llm.ErrProviderTransport}
	sink := &recordingSink{}
	e := newTestExtractor(t, `[]`, stub, sink)
	e.parser = fakePDF("text")

	_, err := e.Handle(context.Background(), Upload{Filename: "resume.pdf", Content: strings.NewReader("%PDF")}, ModeLLM)
	assert.True(t, errors.Is(err, llm.ErrProviderTransport))
	assert.Empty(t, sink.records)
}

func TestHandle_LLMNotWired(t *testing.T) {
	e := newTestExtractor(t, `[]`, nil, nil)
	e.parser = fakePDF("text")

	_, err := e.Handle(context.Background(), Upload{Filename: "resume.pdf", Content: strings.NewReader("%PDF")}, ModeLLM)
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}
