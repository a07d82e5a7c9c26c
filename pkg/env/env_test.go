package env

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("GEMSCAN_TEST_STRING", "coingecko")

	assert.Equal(t, "coingecko", GetEnvString("GEMSCAN_TEST_STRING", "fallback"))
	assert.Equal(t, "fallback", GetEnvString("GEMSCAN_TEST_MISSING", "fallback"))
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		expected     bool
	}{
		{name: "true value", value: "true", defaultValue: false, expected: true},
		{name: "false value", value: "false", defaultValue: true, expected: false},
		{name: "malformed value", value: "not-a-bool", defaultValue: true, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMSCAN_TEST_BOOL", tt.value)
			assert.Equal(t, tt.expected, GetEnvBool("GEMSCAN_TEST_BOOL", tt.defaultValue))
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("GEMSCAN_TEST_INT", "42")

	assert.Equal(t, 42, GetEnvInt("GEMSCAN_TEST_INT", 7))
	assert.Equal(t, 7, GetEnvInt("GEMSCAN_TEST_MISSING", 7))

	t.Setenv("GEMSCAN_TEST_INT", "not-a-number")
	assert.Equal(t, 7, GetEnvInt("GEMSCAN_TEST_INT", 7))
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("GEMSCAN_TEST_FLOAT", "0.95")

	assert.Equal(t, 0.95, GetEnvFloat("GEMSCAN_TEST_FLOAT", 0.5))
	assert.Equal(t, 0.5, GetEnvFloat("GEMSCAN_TEST_MISSING", 0.5))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("GEMSCAN_TEST_DURATION", "30s")

	assert.Equal(t, 30*time.Second, GetEnvDuration("GEMSCAN_TEST_DURATION", time.Minute))
	assert.Equal(t, time.Minute, GetEnvDuration("GEMSCAN_TEST_MISSING", time.Minute))

	t.Setenv("GEMSCAN_TEST_DURATION", "soon")
	assert.Equal(t, time.Minute, GetEnvDuration("GEMSCAN_TEST_DURATION", time.Minute))
}
