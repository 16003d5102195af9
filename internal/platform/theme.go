// Package platform answers environment capability questions the UI
// should not probe for itself.
package platform

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DarkModePreferred reports whether the UI should favour its dark
// palette. RCP_THEME=dark or light overrides detection; otherwise the
// terminal background is queried. Without a terminal to ask there is
// no signal, so the answer is false.
func DarkModePreferred() bool {
	switch strings.ToLower(os.Getenv("RCP_THEME")) {
	case "dark":
		return true
	case "light":
		return false
	}
	fi, err := os.Stdout.Stat()
	if err != nil || fi.Mode()&os.ModeCharDevice == 0 {
		return false
	}
	return lipgloss.HasDarkBackground()
}
