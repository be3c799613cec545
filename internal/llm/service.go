package llm

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGroq   Provider = "groq"
	ProviderNone   Provider = "none"
)

var providerBaseURLs = map[Provider]string{
	ProviderOpenAI: "https://api.openai.com/v1",
	ProviderGroq:   "https://api.groq.com/openai/v1",
}

// SentinelSkill is the single-element result returned when the provider
// answered but its reply could not be read as a skill list.
const SentinelSkill = "Could not parse skill list."

var (
	ErrNotConfigured     = errors.New("LLM provider not configured")
	ErrProviderTransport = errors.New("LLM provider request failed")
)

const skillExtractionPrompt = "Extract all technical and soft skills from the following resume. " +
	"Respond ONLY with a JSON array of skill strings.\n\nResume:\n%s"

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Options struct {
	Provider    string
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
}

type Service struct {
	provider    Provider
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	client      Doer
	cache       Cache
}

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the chat-completion request body.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse maps only the fields read from the completion envelope.
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewService builds a client for an OpenAI-compatible chat-completion API.
// A nil cache disables caching.
func NewService(opts Options, client Doer, cache Cache) *Service {
	provider := Provider(opts.Provider)
	if provider == "" {
		provider = ProviderOpenAI
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = providerBaseURLs[provider]
	}
	if cache == nil {
		cache = noCache{}
	}

	s := &Service{
		provider:    provider,
		apiKey:      opts.APIKey,
		model:       opts.Model,
		temperature: opts.Temperature,
		client:      client,
		cache:       cache,
	}
	if baseURL != "" {
		s.endpoint = strings.TrimRight(baseURL, "/") + "/chat/completions"
	}
	return s
}

// Configured reports whether the service can issue requests.
func (s *Service) Configured() bool {
	return s.provider != ProviderNone && s.endpoint != ""
}

// ExtractSkills asks the provider for the skills in resumeText. Transport
// and HTTP failures return ErrProviderTransport; a reply that cannot be
// parsed yields []string{SentinelSkill} and no error.
func (s *Service) ExtractSkills(ctx context.Context, resumeText string) ([]string, error) {
	if !s.Configured() {
		return nil, eris.Wrapf(ErrNotConfigured, "provider %q", s.provider)
	}

	prompt := buildPrompt(resumeText)
	key := s.cacheKey(prompt)

	if skills, ok := s.cache.Get(ctx, key); ok {
		zap.L().Debug("llm: cache hit", zap.Int("skills", len(skills)))
		return skills, nil
	}

	body, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	skills, ok := parseSkillList(body)
	if !ok {
		zap.L().Warn("llm: could not parse skill list",
			zap.String("provider", string(s.provider)),
			zap.Int("response_bytes", len(body)),
		)
		return []string{SentinelSkill}, nil
	}

	s.cache.Set(ctx, key, skills)
	return skills, nil
}

func buildPrompt(resumeText string) string {
	return fmt.Sprintf(skillExtractionPrompt, resumeText)
}

func (s *Service) cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(s.model + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

// complete issues one chat-completion request and returns the raw body.
func (s *Service) complete(ctx context.Context, prompt string) ([]byte, error) {
	reqBody := ChatRequest{
		Model: s.model,
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
		Temperature: s.temperature,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, eris.Wrap(err, "llm: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, eris.Wrap(err, "llm: build request")
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	startTime := time.Now()
	resp, err := s.client.Do(req)
	elapsed := time.Since(startTime)
	if err != nil {
		return nil, eris.Wrapf(ErrProviderTransport, "%s: %v", s.provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(ErrProviderTransport, "%s: read body: %v", s.provider, err)
	}

	zap.L().Debug("llm: request complete",
		zap.String("provider", string(s.provider)),
		zap.String("model", s.model),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", elapsed),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, eris.Wrapf(ErrProviderTransport, "%s: status %d", s.provider, resp.StatusCode)
	}
	return body, nil
}

// parseSkillList reads choices[0].message.content from the envelope and
// decodes it as a JSON array of strings.
func parseSkillList(body []byte) ([]string, bool) {
	var envelope ChatResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false
	}
	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == nil {
		return nil, false
	}

	var skills []string
	if err := json.Unmarshal([]byte(*envelope.Choices[0].Message.Content), &skills); err != nil {
		return nil, false
	}
	if skills == nil {
		// "null" is valid JSON but not an array
		return nil, false
	}
	return skills, true
}
