package gemini

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/discoveraniket/ration-card-processor/internal/ocr"
)

func TestStripFences(t *testing.T) {
	payload := `{"ration_card_id": {"value": "PHH 1"}}`

	cases := map[string]string{
		"bare":          payload,
		"fenced":        "```\n" + payload + "\n```",
		"fenced json":   "```json\n" + payload + "\n```",
		"fenced JSON":   "```JSON\n" + payload + "\n```",
		"padded":        "  \n```json\n" + payload + "\n```\n  ",
		"unclosed":      "```json\n" + payload,
		"fence in text": "```json\n" + payload + "\n``` trailing note",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got := stripFences(raw)
			if name == "fence in text" {
				// Everything after the closing fence is dropped.
				assert.Equal(t, payload, got)
				return
			}
			assert.Equal(t, payload, got)
		})
	}
}

func TestClassifyHTTPCodes(t *testing.T) {
	cases := []struct {
		code int
		want error
	}{
		{401, ocr.ErrAuth},
		{403, ocr.ErrAuth},
		{429, ocr.ErrQuota},
		{500, ocr.ErrNetwork},
		{503, ocr.ErrNetwork},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("http %d", tc.code), func(t *testing.T) {
			err := classify(&googleapi.Error{Code: tc.code, Message: "nope"})
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestClassifyWrappedError(t *testing.T) {
	inner := &googleapi.Error{Code: 429}
	err := classify(fmt.Errorf("generate content: %w", inner))
	require.ErrorIs(t, err, ocr.ErrQuota)
}

func TestClassifyContextErrors(t *testing.T) {
	require.ErrorIs(t, classify(context.DeadlineExceeded), ocr.ErrNetwork)
	require.ErrorIs(t, classify(context.Canceled), ocr.ErrNetwork)
}

func TestClassifyUnknownErrorIsNetwork(t *testing.T) {
	err := classify(fmt.Errorf("connection reset by peer"))
	require.ErrorIs(t, err, ocr.ErrNetwork)
}

func TestEngineName(t *testing.T) {
	e := New(nil)
	assert.Equal(t, "gemini", e.Name())
}
