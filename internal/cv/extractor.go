package cv

import (
	"bytes"
	"context"
	"io"
	"time"

	"resume-skills/internal/llm"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Mode selects the extraction strategy.
type Mode string

const (
	ModeDeterministic Mode = "deterministic"
	ModeLLM           Mode = "llm"
)

// ParseMode accepts "deterministic" or "llm"; an empty string means deterministic.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDeterministic, "":
		return ModeDeterministic, nil
	case ModeLLM:
		return ModeLLM, nil
	default:
		return "", eris.Wrapf(ErrUnknownMode, "%q", s)
	}
}

// Upload is one résumé file as received from the caller.
type Upload struct {
	Filename string
	Content  io.Reader
}

// Result is the outcome of one extraction.
type Result struct {
	Skills     []string
	Mode       Mode
	Format     Format
	TextLength int
	Elapsed    time.Duration
}

// SkillExtractor is the external extractor used in llm mode.
type SkillExtractor interface {
	ExtractSkills(ctx context.Context, text string) ([]string, error)
}

// ResultSink receives every successful extraction.
type ResultSink interface {
	Record(filename string, res *Result)
}

type Extractor struct {
	parser  *CVParser
	vocab   *VocabularyStore
	matcher *Matcher
	llm     SkillExtractor
	sink    ResultSink
}

// NewExtractor wires the pipeline. llmExtractor and sink may be nil.
func NewExtractor(parser *CVParser, vocab *VocabularyStore, matcher *Matcher, llmExtractor SkillExtractor, sink ResultSink) *Extractor {
	return &Extractor{
		parser:  parser,
		vocab:   vocab,
		matcher: matcher,
		llm:     llmExtractor,
		sink:    sink,
	}
}

// Handle runs one upload through the reader and the selected strategy. The
// returned skills are free of case-insensitive duplicates.
func (e *Extractor) Handle(ctx context.Context, up Upload, mode Mode) (*Result, error) {
	startTime := time.Now()

	if up.Content == nil {
		return nil, ErrNoFileProvided
	}
	data, err := io.ReadAll(up.Content)
	if err != nil {
		return nil, eris.Wrap(err, "read upload")
	}
	if len(data) == 0 {
		return nil, ErrNoFileProvided
	}

	if mode != ModeDeterministic && mode != ModeLLM {
		return nil, eris.Wrapf(ErrUnknownMode, "%q", mode)
	}

	format, err := DetectFormat(up.Filename)
	if err != nil {
		return nil, err
	}

	text, err := e.parser.Parse(format, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	zap.L().Debug("cv parsed",
		zap.String("filename", up.Filename),
		zap.String("format", string(format)),
		zap.Int("text_length", len(text)),
	)

	var skills []string
	switch mode {
	case ModeDeterministic:
		vocab, err := e.vocab.Get(ctx)
		if err != nil {
			return nil, err
		}
		skills = e.matcher.Match(text, vocab)
	case ModeLLM:
		if e.llm == nil {
			return nil, llm.ErrNotConfigured
		}
		skills, err = e.llm.ExtractSkills(ctx, text)
		if err != nil {
			return nil, err
		}
	}

	res := &Result{
		Skills:     Dedupe(skills),
		Mode:       mode,
		Format:     format,
		TextLength: len(text),
		Elapsed:    time.Since(startTime),
	}

	zap.L().Info("skills extracted",
		zap.String("filename", up.Filename),
		zap.String("mode", string(mode)),
		zap.Int("skills", len(res.Skills)),
		zap.Duration("elapsed", res.Elapsed),
	)

	if e.sink != nil {
		e.sink.Record(up.Filename, res)
	}
	return res, nil
}
