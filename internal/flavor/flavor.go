// Package flavor asks a generative text API for match narration. Every call
// fails soft: errors are logged and replaced by canned text.
package flavor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel    = "gemini-2.0-flash"
	DefaultTimeout  = 8 * time.Second

	DefaultIntroPrompt = "You are a hype announcer for a superhero arena card battle. " +
		"{{player}} faces {{opponent}}. Write a short, high-energy 2-sentence intro for this match. " +
		"Keep it under 30 words."
	DefaultCommentPrompt = "{{player}} just played {{card}}. Give a 1-sentence tactical comment " +
		"or a famous quote modified for this battle. Keep it under 15 words."
	DefaultFallbackIntro   = "The arena awaits! Heroes assemble!"
	DefaultFallbackComment = "{{card}} is ready for battle!"
)

// Config configures the generative text client.
type Config struct {
	Enabled  bool
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration

	// Prompts and fallbacks substitute {{player}}, {{opponent}} and {{card}}.
	IntroPrompt     string
	CommentPrompt   string
	FallbackIntro   string
	FallbackComment string
}

func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.IntroPrompt == "" {
		c.IntroPrompt = DefaultIntroPrompt
	}
	if c.CommentPrompt == "" {
		c.CommentPrompt = DefaultCommentPrompt
	}
	if c.FallbackIntro == "" {
		c.FallbackIntro = DefaultFallbackIntro
	}
	if c.FallbackComment == "" {
		c.FallbackComment = DefaultFallbackComment
	}
	return c
}

// Service generates battle intros and tactical comments. Identical prompts
// in flight at the same time share one request.
type Service struct {
	logger *zap.Logger
	cfg    Config
	client *http.Client
	group  singleflight.Group
}

// NewService creates a flavor client. A nil client gets one with the
// configured timeout.
func NewService(logger *zap.Logger, cfg Config, client *http.Client) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Service{
		logger: logger,
		cfg:    cfg,
		client: client,
	}
}

// BattleIntro announces a match between two players.
func (s *Service) BattleIntro(ctx context.Context, playerName, opponentName string) string {
	vars := map[string]string{"player": playerName, "opponent": opponentName}
	return s.generateOr(ctx, fill(s.cfg.IntroPrompt, vars), fill(s.cfg.FallbackIntro, vars))
}

// TacticalComment remarks on a card a player just placed.
func (s *Service) TacticalComment(ctx context.Context, playerName, cardName string) string {
	vars := map[string]string{"player": playerName, "card": cardName}
	return s.generateOr(ctx, fill(s.cfg.CommentPrompt, vars), fill(s.cfg.FallbackComment, vars))
}

func (s *Service) generateOr(ctx context.Context, prompt, fallback string) string {
	if !s.cfg.Enabled || s.cfg.APIKey == "" {
		return fallback
	}
	v, err, shared := s.group.Do(prompt, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
		return s.generate(ctx, prompt)
	})
	if err != nil {
		s.logger.Warn("flavor text generation failed", zap.Error(err))
		return fallback
	}
	text := strings.TrimSpace(v.(string))
	if text == "" {
		return fallback
	}
	s.logger.Debug("flavor text generated", zap.Bool("shared", shared), zap.Int("length", len(text)))
	return text
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// generate calls the generateContent endpoint and returns the first
// candidate's text.
func (s *Service) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(s.cfg.Endpoint, "/"), url.PathEscape(s.cfg.Model), url.QueryEscape(s.cfg.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("model returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	var b strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			b.WriteString(p.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("model returned no text")
	}
	return b.String(), nil
}

// fill replaces {{name}} tokens in tmpl.
func fill(tmpl string, vars map[string]string) string {
	for k, v := range vars {
		tmpl = strings.ReplaceAll(tmpl, "{{"+k+"}}", v)
	}
	return tmpl
}
