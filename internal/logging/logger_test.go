package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			logger, err := NewLogger(level)
			require.NoError(t, err)
			assert.NotNil(t, logger.Logger)
		})
	}

	_, err := NewLogger("loud")
	assert.Error(t, err)
}

func TestWithInvocationID(t *testing.T) {
	logger := NewNop().WithInvocationID().Named("repository")
	assert.NotNil(t, logger.Logger)
}
