package story

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"textrpg/server/internal/models"
)

// Format is the encoding of a story document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const maxStoryBytes = 16 << 20

// Loader fetches a story document from a file or URL and compiles it
type Loader struct {
	client   *http.Client
	logger   *zap.Logger
	strict   bool
	template *models.Character
	validate *validator.Validate
}

// Option configures a Loader
type Option func(*Loader)

// WithHTTPClient sets the client used for http(s) sources
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) { l.client = client }
}

// WithStrict makes unknown or invalid effects fail the load
func WithStrict(strict bool) Option {
	return func(l *Loader) { l.strict = strict }
}

// WithTemplate sets the character whose slots and stats route effect keys
func WithTemplate(c *models.Character) Option {
	return func(l *Loader) { l.template = c }
}

// NewLoader creates a new story loader
func NewLoader(logger *zap.Logger, opts ...Option) *Loader {
	l := &Loader{
		client:   http.DefaultClient,
		logger:   logger,
		template: models.NewStartingCharacter(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and compiles the story at source, a file path or an http(s) URL.
func (l *Loader) Load(ctx context.Context, source string) (models.Graph, error) {
	data, format, err := l.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}

	graph, err := l.Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("story %s: %w", source, err)
	}

	l.logger.Info("Story loaded",
		zap.String("source", source),
		zap.String("format", string(format)),
		zap.Int("nodes", len(graph)))
	return graph, nil
}

// Fetch returns the raw document and its detected format
func (l *Loader) Fetch(ctx context.Context, source string) ([]byte, Format, error) {
	if isURL(source) {
		return l.fetchURL(ctx, source)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read story file: %w", err)
	}
	return data, formatFromExt(filepath.Ext(source)), nil
}

func (l *Loader) fetchURL(ctx context.Context, source string) ([]byte, Format, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create story request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch story: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to load story data. status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxStoryBytes))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read story response: %w", err)
	}

	format := formatFromContentType(resp.Header.Get("Content-Type"))
	if format == "" {
		format = formatFromExt(path.Ext(req.URL.Path))
	}
	return data, format, nil
}

// Decode parses a story document and compiles it into a graph
func (l *Loader) Decode(data []byte, format Format) (models.Graph, error) {
	raw := make(map[string]rawNode)
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedStory, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedStory, err)
		}
	}

	c := newCompiler(l.template, l.validate)
	graph, err := c.compile(raw)
	if err != nil {
		return nil, err
	}

	if err := issuesError(c.issues); err != nil {
		if l.strict {
			return nil, err
		}
		for _, issue := range c.issues {
			l.logger.Warn("Ignoring story effect",
				zap.String("node", issue.Node),
				zap.Int("choice", issue.Choice),
				zap.String("key", issue.Key),
				zap.Error(issue.Err))
		}
	}
	return graph, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func formatFromExt(ext string) Format {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

func formatFromContentType(contentType string) Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch {
	case strings.Contains(mediaType, "yaml"):
		return FormatYAML
	case strings.Contains(mediaType, "json"):
		return FormatJSON
	}
	return ""
}
