package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogWarnAddsErrorField(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	LogWarn(logger, "refresh rejected", errors.New("boom"), logrus.Fields{"user_id": "u1"})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "refresh rejected", entry["msg"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "u1", entry["user_id"])
}

func TestLogHelpersTolerateNil(t *testing.T) {
	assert.NotPanics(t, func() {
		LogError(nil, "x", errors.New("y"), nil)
		LogWarn(NewNopLogger(), "x", nil, nil)
	})
}
