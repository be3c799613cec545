package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"resume-skills/internal/config"
	"resume-skills/internal/cv"
	"resume-skills/internal/llm"
	"resume-skills/internal/storage"
	skillshttp "resume-skills/pkg/http"
)

// pipelineEnv holds everything a command needs to run extractions.
type pipelineEnv struct {
	Extractor  *cv.Extractor
	Vocabulary *cv.VocabularyStore
	History    *storage.DB

	recorder   *storage.Recorder
	closeCache func()
}

func initPipeline(ctx context.Context, c *config.Config, withHistory bool) (*pipelineEnv, error) {
	env := &pipelineEnv{closeCache: func() {}}

	cache, closeCache, err := llm.NewCache(ctx, llm.CacheOptions{
		Driver:   c.LLM.Cache.Driver,
		TTL:      c.LLM.Cache.TTL,
		Address:  c.LLM.Cache.Address,
		Password: c.LLM.Cache.Password,
	})
	if err != nil {
		return nil, eris.Wrap(err, "init llm cache")
	}
	env.closeCache = closeCache

	llmService := llm.NewService(llm.Options{
		Provider:    c.LLM.Provider,
		BaseURL:     c.LLM.BaseURL,
		Model:       c.LLM.Model,
		APIKey:      c.LLM.APIKey,
		Temperature: c.LLM.Temperature,
	}, skillshttp.NewClient(c.LLM.Timeout), cache)

	if !llmService.Configured() {
		zap.L().Warn("llm provider not configured, llm mode will be unavailable",
			zap.String("provider", c.LLM.Provider))
	} else if c.LLM.APIKey == "" {
		zap.L().Warn("llm api key is empty, provider calls will likely be rejected",
			zap.String("provider", c.LLM.Provider))
	}

	var sink cv.ResultSink
	if withHistory && c.Store.Driver != "" {
		db, err := storage.NewDB(ctx, c.Store.Driver, c.Store.DatabaseURL)
		if err != nil {
			env.closeCache()
			return nil, eris.Wrap(err, "open history store")
		}
		env.History = db
		env.recorder = storage.NewRecorder(db, 100)
		sink = env.recorder
		zap.L().Info("extraction history enabled", zap.String("driver", c.Store.Driver))
	}

	env.Vocabulary = cv.NewVocabularyStore(c.Vocabulary.Path, c.Vocabulary.Cache)
	env.Extractor = cv.NewExtractor(
		cv.NewCVParser(c.CV.PDFBackend),
		env.Vocabulary,
		cv.NewMatcher(c.Matcher.WordBoundary),
		llmService,
		sink,
	)

	return env, nil
}

// Close drains the history queue before closing its database.
func (e *pipelineEnv) Close() {
	if e.recorder != nil {
		e.recorder.Close()
	}
	if e.History != nil {
		e.History.Close()
	}
	e.closeCache()
}
