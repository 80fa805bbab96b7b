package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_LevelParsing(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New("debug", false).GetLevel())
	assert.Equal(t, zerolog.WarnLevel, New("WARN", false).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("nonsense", false).GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("", true).GetLevel())
}

func TestTaggedChildren(t *testing.T) {
	cases := []struct {
		tag  func(zerolog.Logger, string) zerolog.Logger
		want string
	}{
		{Service, `"service":"analysis"`},
		{Handler, `"handler":"analysis"`},
		{Engine, `"engine":"analysis"`},
		{Repository, `"repository":"analysis"`},
		{Client, `"client":"analysis"`},
	}

	for _, tc := range cases {
		var buf bytes.Buffer
		base := zerolog.New(&buf)
		tagged := tc.tag(base, "analysis")
		tagged.Info().Msg("tagged")
		assert.Contains(t, buf.String(), tc.want)
	}
}
