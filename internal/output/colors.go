package output

import (
	"github.com/fatih/color"
)

// ColorScheme holds one color per kind of output element
type ColorScheme struct {
	Method      *color.Color
	URL         *color.Color
	StatusOK    *color.Color
	StatusWarn  *color.Color
	StatusError *color.Color
	HeaderKey   *color.Color
	Kind        *color.Color
}

// DefaultColorScheme returns the default color scheme
func DefaultColorScheme() *ColorScheme {
	return &ColorScheme{
		Method:      color.New(color.FgBlue, color.Bold),
		URL:         color.New(color.FgCyan),
		StatusOK:    color.New(color.FgGreen, color.Bold),
		StatusWarn:  color.New(color.FgYellow, color.Bold),
		StatusError: color.New(color.FgRed, color.Bold),
		HeaderKey:   color.New(color.FgYellow),
		Kind:        color.New(color.FgMagenta),
	}
}

// NoColorScheme returns a color scheme with all colors disabled
func NoColorScheme() *ColorScheme {
	s := DefaultColorScheme()
	for _, c := range s.all() {
		c.DisableColor()
	}
	return s
}

// SchemeFor returns NoColorScheme when noColor is set, else DefaultColorScheme.
func SchemeFor(noColor bool) *ColorScheme {
	if noColor {
		return NoColorScheme()
	}
	return DefaultColorScheme()
}

func (s *ColorScheme) all() []*color.Color {
	return []*color.Color{s.Method, s.URL, s.StatusOK, s.StatusWarn, s.StatusError, s.HeaderKey, s.Kind}
}

// SuccessIcon returns a green checkmark, plain when noColor is set
func SuccessIcon(noColor bool) string {
	return icon("✓", color.FgGreen, noColor)
}

// ErrorIcon returns a red cross, plain when noColor is set
func ErrorIcon(noColor bool) string {
	return icon("✗", color.FgRed, noColor)
}

func icon(symbol string, fg color.Attribute, noColor bool) string {
	if noColor {
		return symbol
	}
	return color.New(fg).Sprint(symbol)
}
