package cv

import (
	"context"
	"encoding/json"
	"os"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Vocabulary is the ordered list of known skill names. A published
// Vocabulary is never mutated.
type Vocabulary []string

// LoadVocabulary reads a JSON array of skill names from path. Duplicates are
// kept; the matcher deduplicates its output.
func LoadVocabulary(path string) (Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(ErrVocabularyUnavailable, "read %s: %v", path, err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrapf(ErrVocabularyUnavailable, "parse %s: %v", path, err)
	}

	items, ok := doc.([]any)
	if !ok {
		return nil, eris.Wrapf(ErrVocabularySchema, "%s: top-level value is %T", path, doc)
	}

	vocab := make(Vocabulary, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, eris.Wrapf(ErrVocabularySchema, "%s: element %d is %T", path, i, item)
		}
		vocab = append(vocab, s)
	}
	return vocab, nil
}

// VocabularyStore serves the vocabulary to concurrent requests. With caching
// on, readers share one immutable snapshot that Reload swaps atomically;
// with caching off every Get reads the file again.
type VocabularyStore struct {
	path    string
	cache   bool
	current atomic.Pointer[Vocabulary]
	group   singleflight.Group
}

func NewVocabularyStore(path string, cache bool) *VocabularyStore {
	return &VocabularyStore{path: path, cache: cache}
}

// Get returns the current vocabulary, loading it on first use.
func (s *VocabularyStore) Get(ctx context.Context) (Vocabulary, error) {
	if !s.cache {
		return LoadVocabulary(s.path)
	}
	if v := s.current.Load(); v != nil {
		return *v, nil
	}
	return s.load(ctx)
}

// Reload re-reads the source and publishes the new snapshot. On failure the
// previous snapshot stays in place.
func (s *VocabularyStore) Reload(ctx context.Context) (Vocabulary, error) {
	if !s.cache {
		return LoadVocabulary(s.path)
	}
	return s.load(ctx)
}

func (s *VocabularyStore) load(ctx context.Context) (Vocabulary, error) {
	ch := s.group.DoChan(s.path, func() (any, error) {
		vocab, err := LoadVocabulary(s.path)
		if err != nil {
			return nil, err
		}
		s.current.Store(&vocab)
		zap.L().Info("skill vocabulary loaded",
			zap.String("path", s.path),
			zap.Int("entries", len(vocab)),
		)
		return vocab, nil
	})

	select {
	case <-ctx.Done():
		return nil, eris.Wrap(ctx.Err(), "load vocabulary")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Vocabulary), nil
	}
}
