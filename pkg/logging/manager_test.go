package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceLogger(t *testing.T) {
	config := LoggerConfig{
		LogDir:        t.TempDir(),
		ProcessName:   TestProcess,
		IsDevelopment: true,
	}

	require.NoError(t, InitServiceLogger(config))

	logger := GetServiceLogger()
	require.NotNil(t, logger)
	logger.Info("service logger initialized", "process", string(TestProcess))

	// Init is once-only: a second call must keep the existing instance.
	require.NoError(t, InitServiceLogger(LoggerConfig{ProcessName: ScannerProcess}))
	assert.Same(t, logger, GetServiceLogger())

	Shutdown()
}
