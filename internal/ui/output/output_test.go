package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/ui/output"
)

func TestColorProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv(output.ForceColorEnv, "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfile(), "NO_COLOR beats forced color")

	t.Setenv("NO_COLOR", "")
	p := output.ColorProfile()
	assert.NotEqual(t, termenv.Ascii, p)

	t.Setenv(output.ForceColorEnv, "")
	p = output.ColorProfile()
	assert.True(t, p >= termenv.TrueColor && p <= termenv.Ascii)
}

func TestColorProfileANSI(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.Equal(t, termenv.ANSI, output.ColorProfileANSI())

	t.Setenv("NO_COLOR", "1")
	assert.Equal(t, termenv.Ascii, output.ColorProfileANSI())
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	out := output.New(&buf)
	_, _ = out.WriteString("configure")
	assert.Equal(t, "configure", buf.String())

	assert.NotNil(t, output.New(nil))
}

func TestNewWithProfile(t *testing.T) {
	t.Setenv("NO_COLOR", "")

	var buf bytes.Buffer
	out := output.NewWithProfile(&buf, output.ColorProfileANSI)
	_, _ = out.WriteString(out.String("ok").Foreground(termenv.ANSIGreen).String())
	assert.Contains(t, buf.String(), "ok")
	assert.Contains(t, buf.String(), "\x1b[")

	assert.NotNil(t, output.NewWithProfile(nil, output.ColorProfile))
}
