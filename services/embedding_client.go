package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultEmbeddingModel is used when OLLAMA_MODEL is empty.
	DefaultEmbeddingModel = "nomic-embed-text"

	contentEmbeddingMaxChars = 8000
)

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Model() string
}

// OllamaEmbedder calls Ollama's /api/embed endpoint.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewOllamaEmbedder creates an embedder. Each call is bounded by timeout in
// addition to the caller's context.
func NewOllamaEmbedder(baseURL, model string, timeout time.Duration) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaEmbedder{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

func (e *OllamaEmbedder) Model() string { return e.model }

// Embed converts text into a vector embedding. Every failure wraps
// ErrEmbeddingUnavailable.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	body, err := json.Marshal(embedRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", ErrEmbeddingUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrEmbeddingUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", ErrEmbeddingUnavailable, resp.StatusCode, string(b))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrEmbeddingUnavailable, err)
	}
	if len(out.Embeddings) == 0 || len(out.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", ErrEmbeddingUnavailable)
	}
	return out.Embeddings[0], nil
}

// Ping checks that the Ollama server answers.
func (e *OllamaEmbedder) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrEmbeddingUnavailable, resp.StatusCode)
	}
	return nil
}

func titleEmbeddingInput(title string) string {
	return "Title: " + title
}

func contentEmbeddingInput(text string) string {
	runes := []rune(text)
	if len(runes) > contentEmbeddingMaxChars {
		return "Document: " + string(runes[:contentEmbeddingMaxChars]) + "..."
	}
	return "Document: " + text
}

// EmbedSubmission computes the title and content embeddings concurrently.
// Either failure fails both.
func EmbedSubmission(ctx context.Context, e Embedder, title, text string) (titleVec, contentVec []float64, err error) {
	if e == nil {
		return nil, nil, fmt.Errorf("%w: no embedder configured", ErrEmbeddingUnavailable)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := e.Embed(gctx, titleEmbeddingInput(title))
		titleVec = v
		return err
	})
	g.Go(func() error {
		v, err := e.Embed(gctx, contentEmbeddingInput(text))
		contentVec = v
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return titleVec, contentVec, nil
}
