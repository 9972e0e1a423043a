package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{}, "test")
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestEnabledInstallsProvider(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{
		Enabled:     true,
		Endpoint:    "localhost:4318",
		ServiceName: "postbridge-test",
		Insecure:    true,
	}, "test")
	require.NoError(t, err)

	// Nothing was recorded, so shutdown has nothing to flush.
	require.NoError(t, shutdown(context.Background()))
}
