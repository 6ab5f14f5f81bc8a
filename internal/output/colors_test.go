package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorSchemes(t *testing.T) {
	for name, scheme := range map[string]*ColorScheme{
		"default":  DefaultColorScheme(),
		"no color": NoColorScheme(),
	} {
		t.Run(name, func(t *testing.T) {
			for _, c := range scheme.all() {
				assert.NotNil(t, c)
			}
		})
	}
}

func TestNoColorScheme_PlainText(t *testing.T) {
	scheme := NoColorScheme()
	assert.Equal(t, "rate", scheme.Rate.Sprint("rate"))
	assert.Equal(t, "boom", scheme.Error.Sprint("boom"))
}

func TestForceColors(t *testing.T) {
	scheme := DefaultColorScheme().forceColors()
	assert.Contains(t, scheme.Error.Sprint("boom"), "\x1b[31m")
}

func TestIcons(t *testing.T) {
	assert.Equal(t, "✓", SuccessIcon(true))
	assert.Equal(t, "✗", ErrorIcon(true))
	assert.Equal(t, "⚠", WarningIcon(true))
	assert.Contains(t, SuccessIcon(false), "✓")
	assert.Contains(t, ErrorIcon(false), "✗")
	assert.Contains(t, WarningIcon(false), "⚠")
}
