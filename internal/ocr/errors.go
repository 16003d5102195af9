package ocr

import "errors"

// Recognition failures collapse into four categories. The interactive
// loop treats them all the same way, a status line and an unchanged
// record, so engines wrap rather than invent.
var (
	// ErrNetwork covers transport failures, timeouts and upstream
	// server errors.
	ErrNetwork = errors.New("network failure")

	// ErrAuth covers rejected or missing credentials.
	ErrAuth = errors.New("authentication failed")

	// ErrQuota covers rate and usage limits.
	ErrQuota = errors.New("quota exhausted")

	// ErrUnrecognizedFormat covers images the engine cannot decode
	// and responses that do not match the extraction contract.
	ErrUnrecognizedFormat = errors.New("unrecognized format")
)
