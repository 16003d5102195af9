// Package tesseract implements an offline extraction engine backed by
// a local Tesseract installation. It reads the printed ration card ID
// reliably; the handwritten and bilingual fields on the cards are out
// of its reach, so a result usually carries only that one field.
package tesseract

import (
	"context"
	"fmt"
	"image"
	"regexp"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/discoveraniket/ration-card-processor/internal/ocr"
)

// Engine wraps a gosseract client per recognition.
type Engine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguages overrides the Tesseract language set. Default is eng.
func WithLanguages(langs ...string) Option {
	return func(e *Engine) {
		if len(langs) > 0 {
			e.languages = langs
		}
	}
}

// New builds an offline engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		languages:     []string{"eng"},
		clientFactory: gosseract.NewClient,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ocr.Engine.
func (e *Engine) Name() string { return "tesseract" }

// Recognize implements ocr.Engine. It scans the word boxes Tesseract
// reports for a card category code followed by the card number.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	client := e.clientFactory()
	defer client.Close()

	if err := client.SetLanguage(e.languages...); err != nil {
		return ocr.Result{}, fmt.Errorf("set language: %w", err)
	}
	if err := client.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("%w: %v", ocr.ErrUnrecognizedFormat, err)
	}
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, fmt.Errorf("recognize %s: %w", in.Filename, err)
	}

	words, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return ocr.Result{}, fmt.Errorf("%w: %v", ocr.ErrUnrecognizedFormat, err)
	}

	id, rect, ok := extractCardID(words)
	if !ok {
		return ocr.Result{}, fmt.Errorf("%w: no ration card id in recognized text", ocr.ErrUnrecognizedFormat)
	}
	return ocr.Result{
		Fields: map[string]string{ocr.FieldRationCardID: id},
		Boxes: []ocr.Box{{
			Field:  ocr.FieldRationCardID,
			Coords: [4]float64{float64(rect.Min.Y), float64(rect.Min.X), float64(rect.Max.Y), float64(rect.Max.X)},
		}},
	}, nil
}

// Card IDs print as a category code and a number, usually as two words
// ("PHH 0046010534"), sometimes fused into one token.
var (
	categoryRe = regexp.MustCompile(`^(AAY|SPHH|PHH|RKSY-I|RKSY-II)$`)
	inlineRe   = regexp.MustCompile(`^(AAY|SPHH|PHH|RKSY-I|RKSY-II)[- ]?([0-9]{6,})$`)
	digitsRe   = regexp.MustCompile(`^[0-9]{6,}$`)
)

func extractCardID(words []gosseract.BoundingBox) (string, image.Rectangle, bool) {
	for i, w := range words {
		token := normalizeToken(w.Word)
		if m := inlineRe.FindStringSubmatch(token); m != nil {
			return m[1] + " " + m[2], w.Box, true
		}
		if !categoryRe.MatchString(token) || i+1 >= len(words) {
			continue
		}
		next := normalizeToken(words[i+1].Word)
		if digitsRe.MatchString(next) {
			return token + " " + next, w.Box.Union(words[i+1].Box), true
		}
	}
	return "", image.Rectangle{}, false
}

// normalizeToken uppercases and strips the label punctuation OCR tends
// to glue onto card text.
func normalizeToken(s string) string {
	return strings.ToUpper(strings.Trim(s, " \t\r\n:;,."))
}
