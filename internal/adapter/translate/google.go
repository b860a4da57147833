package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	defaultEndpoint = "https://translate.googleapis.com/translate_a/single"
	defaultTimeout  = 15 * time.Second
)

// ErrEmptyTranslation is returned when the service answers without any text
var ErrEmptyTranslation = errors.New("empty translation")

// Google translates text through the public translate_a endpoint.
// Source language is auto-detected.
type Google struct {
	endpoint   string
	target     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGoogle creates a translator into the given BCP 47 target language
func NewGoogle(endpoint string, target language.Tag, timeout time.Duration, httpClient *http.Client, logger *slog.Logger) *Google {
	if logger == nil {
		logger = slog.Default()
	}
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	base, _ := target.Base()
	return &Google{
		endpoint:   endpoint,
		target:     base.String(),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Translate returns text in the target language
func (g *Google) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", "auto")
	query.Set("tl", g.target)
	query.Set("dt", "t")
	query.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		g.logger.Warn("translate request error", "status", resp.StatusCode)
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	out, err := parseSegments(body)
	if err != nil {
		return "", err
	}
	return out, nil
}

// parseSegments joins the translated chunks of a translate_a response:
// [[["chunk","source",...],["chunk","source",...]], null, "en", ...]
func parseSegments(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(raw) == 0 {
		return "", ErrEmptyTranslation
	}

	var segments [][]any
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("failed to parse segments: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyTranslation
	}
	return sb.String(), nil
}

// Noop returns text unchanged; used when translation is disabled
type Noop struct{}

// Translate implements domain.Translator
func (Noop) Translate(_ context.Context, text string) (string, error) {
	return text, nil
}
