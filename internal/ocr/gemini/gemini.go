// Package gemini implements the cloud extraction engine on top of the
// Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"

	"github.com/discoveraniket/ration-card-processor/internal/config"
	"github.com/discoveraniket/ration-card-processor/internal/ocr"
)

// Engine sends card images to Gemini with the extraction prompt and
// parses the strict JSON reply. One recognition opens one client; the
// tool makes a single call per user action, so there is no connection
// to keep warm.
type Engine struct {
	cfg    *config.Config
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger routes engine diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New builds a Gemini engine from cfg. The config must have passed
// Validate.
func New(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ocr.Engine.
func (e *Engine) Name() string { return "gemini" }

// Recognize implements ocr.Engine.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(e.cfg.APIKey))
	if err != nil {
		return ocr.Result{}, classify(fmt.Errorf("create client: %w", err))
	}
	defer client.Close()

	model := client.GenerativeModel(e.cfg.Model)
	model.ResponseMIMEType = "application/json"

	e.logger.Debug("sending image to gemini",
		"file", in.Filename,
		"model", e.cfg.Model,
		"bytes", len(in.Image),
	)

	resp, err := model.GenerateContent(ctx,
		genai.ImageData(in.Format, in.Image),
		genai.Text(e.cfg.Prompt),
	)
	if err != nil {
		return ocr.Result{}, classify(err)
	}

	text, err := responseText(resp)
	if err != nil {
		return ocr.Result{}, err
	}

	res, err := ocr.ParseResponse([]byte(stripFences(text)))
	if err != nil {
		e.logger.Debug("unparseable model reply", "file", in.Filename, "error", err)
		return ocr.Result{}, err
	}

	e.logger.Debug("extraction complete",
		"file", in.Filename,
		"fields", len(res.Fields),
		"boxes", len(res.Boxes),
	)
	return res, nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("%w: model returned no candidates", ocr.ErrUnrecognizedFormat)
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: model returned no text parts", ocr.ErrUnrecognizedFormat)
	}
	return sb.String(), nil
}

// stripFences removes a markdown code fence around the payload. Models
// sometimes add one even when told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if strings.HasPrefix(strings.ToLower(s), "json") {
		s = s[len("json"):]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// classify maps transport and API errors onto the ocr sentinels so the
// rest of the program never sees Google client types.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ocr.ErrNetwork, err)
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPCode() {
		case 401, 403:
			return fmt.Errorf("%w: %v", ocr.ErrAuth, err)
		case 429:
			return fmt.Errorf("%w: %v", ocr.ErrQuota, err)
		}
		if s := apiErr.GRPCStatus(); s != nil {
			switch s.Code() {
			case codes.Unauthenticated, codes.PermissionDenied:
				return fmt.Errorf("%w: %v", ocr.ErrAuth, err)
			case codes.ResourceExhausted:
				return fmt.Errorf("%w: %v", ocr.ErrQuota, err)
			}
		}
		return fmt.Errorf("%w: %v", ocr.ErrNetwork, err)
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case 401, 403:
			return fmt.Errorf("%w: %v", ocr.ErrAuth, err)
		case 429:
			return fmt.Errorf("%w: %v", ocr.ErrQuota, err)
		}
		return fmt.Errorf("%w: %v", ocr.ErrNetwork, err)
	}

	return fmt.Errorf("%w: %v", ocr.ErrNetwork, err)
}
