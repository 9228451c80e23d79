package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: zerolog.WarnLevel, Format: "json", Output: &buf})

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG", zerolog.InfoLevel))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off", zerolog.InfoLevel))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud", zerolog.InfoLevel))
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("ARBOR_LOG_LEVEL", "error")
	t.Setenv("ARBOR_LOG_FORMAT", "json")

	log := NewFromEnv()
	assert.Equal(t, zerolog.ErrorLevel, log.GetLevel())
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: zerolog.InfoLevel, Format: "json", Output: &buf})

	ctx := WithContext(context.Background(), base)
	ctx = WithComponent(ctx, "window")
	ctx = WithScene(ctx, "demo.yaml")
	FromContext(ctx).Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"window"`)
	assert.Contains(t, buf.String(), `"scene":"demo.yaml"`)
}

func TestFromContextWithoutLoggerIsDisabled(t *testing.T) {
	log := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}
