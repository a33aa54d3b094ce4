package logging_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"olmkit/internal/logging"
)

func TestNew_Environments(t *testing.T) {
	for _, env := range []string{"", "development", "PRODUCTION"} {
		l, err := logging.New(logging.Config{Environment: env})
		require.NoError(t, err, env)
		require.NotNil(t, l)
	}
	_, err := logging.New(logging.Config{Environment: "staging"})
	require.Error(t, err)
}

func TestLogger_KeyValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := logging.FromZap(zap.New(core)).Named("bridge").With("kind", "account")

	l.Warn("empty passphrase", "op", "pickle")
	l.Debug("released")

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "empty passphrase", entries[0].Message)
	require.Equal(t, "bridge", entries[0].LoggerName)
	ctx := entries[0].ContextMap()
	require.Equal(t, "account", ctx["kind"])
	require.Equal(t, "pickle", ctx["op"])
}

func TestNop(t *testing.T) {
	l := logging.Nop()
	l.Info("ignored", "k", 1)
	l.Error("ignored")
}
