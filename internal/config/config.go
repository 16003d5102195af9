// Package config builds the immutable runtime configuration for the
// ration card processor. A Config is constructed once at startup from
// environment variables (optionally seeded from a .env file by the CLI
// layer) and command-line flags, then passed by value to the components
// that need it. Nothing in this package mutates a Config after Load.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Engine names accepted by RCP_ENGINE and the --engine flag.
const (
	EngineGemini    = "gemini"
	EngineTesseract = "tesseract"
)

// Artifact names written next to the scanned images.
const (
	DataFileName    = "data.xlsx"
	SidecarFileName = "bbox_data.json"
)

// KnownModels lists the Gemini models verified against the extraction
// prompt. The selector in the TUI cycles through these in order.
var KnownModels = []string{
	"gemini-2.5-pro-exp-03-25",
	"gemini-1.5-flash-8b-exp-0924",
	"gemini-2.0-flash",
}

// DefaultModel is the entry of KnownModels used when RCP_MODEL is unset.
const DefaultModel = "gemini-2.0-flash"

// DefaultMaxImageBytes caps the encoded image payload sent to the OCR
// backend. Cards scanned at 300 DPI stay well under this.
const DefaultMaxImageBytes = 10 << 20

// DefaultRequestTimeout bounds a single OCR round trip.
const DefaultRequestTimeout = 2 * time.Minute

// ExtractionPrompt instructs the model to answer with the strict JSON
// shape parsed by the ocr package. Field keys here must stay in sync
// with the ocr field key constants.
const ExtractionPrompt = `Extract the following fields from this scanned Indian ration card and
respond with a single JSON object only. No markdown fences, no commentary.

The object must contain exactly these keys:
  "ration_card_id", "name_of_card_holder", "guardian_name",
  "head_of_family", "address"

Each key maps to an object with two members:
  "value": the text exactly as printed on the card, or "" when the
           field is absent or unreadable
  "bounding_box": [y_min, x_min, y_max, x_max] locating that text in
           the image, or [] when the field is absent

Do not invent values, do not translate, and keep the original spelling
and digit grouping. The ration card ID is the category code (AAY, SPHH,
PHH, RKSY-I or RKSY-II) followed by the card number.`

// Config carries every tunable the processor reads at runtime. Treat a
// loaded Config as read-only.
type Config struct {
	// APIKey authenticates against the Gemini API. Required when
	// Engine is EngineGemini.
	APIKey string

	// Model is the Gemini model name used for extraction.
	Model string

	// Engine selects the OCR backend.
	Engine string

	// Prompt is the extraction instruction sent along with the image.
	Prompt string

	// MaxImageBytes rejects encoded payloads larger than this before
	// they are sent to the OCR backend.
	MaxImageBytes int64

	// RequestTimeout bounds a single recognize call.
	RequestTimeout time.Duration

	// Debug enables file logging from the TUI, which cannot log to
	// the terminal it draws on.
	Debug bool

	// LogFile receives debug logs. Empty means a file next to the
	// working directory chosen by the CLI layer.
	LogFile string
}

// Load reads the configuration from the environment. Call after any
// .env file has been loaded into the process environment.
func Load() *Config {
	return &Config{
		APIKey:         os.Getenv("GEMINI_API_KEY"),
		Model:          getEnv("RCP_MODEL", DefaultModel),
		Engine:         getEnv("RCP_ENGINE", EngineGemini),
		Prompt:         ExtractionPrompt,
		MaxImageBytes:  getEnvInt64("RCP_MAX_IMAGE_BYTES", DefaultMaxImageBytes),
		RequestTimeout: getEnvDuration("RCP_REQUEST_TIMEOUT", DefaultRequestTimeout),
		Debug:          getEnvBool("RCP_DEBUG", false),
		LogFile:        os.Getenv("RCP_LOG_FILE"),
	}
}

// Validate reports the first problem that would prevent the processor
// from running with this configuration.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineGemini:
		if strings.TrimSpace(c.APIKey) == "" {
			return fmt.Errorf("GEMINI_API_KEY is not set; required for the %s engine", EngineGemini)
		}
		if strings.TrimSpace(c.Model) == "" {
			return fmt.Errorf("model name is empty")
		}
	case EngineTesseract:
		// Runs offline, nothing to check.
	default:
		return fmt.Errorf("unknown OCR engine %q (want %s or %s)", c.Engine, EngineGemini, EngineTesseract)
	}
	if strings.TrimSpace(c.Prompt) == "" {
		return fmt.Errorf("extraction prompt is empty")
	}
	if c.MaxImageBytes <= 0 {
		return fmt.Errorf("max image bytes must be positive, got %d", c.MaxImageBytes)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
