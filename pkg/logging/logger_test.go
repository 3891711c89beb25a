package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { SetGlobalLogger(zerolog.Nop()) })

	testCases := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{name: "debug", level: "debug", want: zerolog.DebugLevel},
		{name: "mixed case", level: " WARN ", want: zerolog.WarnLevel},
		{name: "empty falls back to info", level: "", want: zerolog.InfoLevel},
		{name: "garbage falls back to info", level: "loud", want: zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := Configure(&buf, tc.level)
			require.Equal(t, tc.want, logger.GetLevel())
			require.Equal(t, tc.want, Logger.GetLevel())
		})
	}
}

func TestConfigureWrites(t *testing.T) {
	t.Cleanup(func() { SetGlobalLogger(zerolog.Nop()) })

	var buf bytes.Buffer
	Configure(&buf, "info")

	Debug().Msg("hidden")
	Info().Str("path", "/pulls").Msg("fetched page")

	out := buf.String()
	require.Contains(t, out, "fetched page")
	require.Contains(t, out, "/pulls")
	require.NotContains(t, out, "hidden")
}
