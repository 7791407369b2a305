package logx

import (
	"bytes"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewParsesLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug")
	assert.Equal(t, log.DebugLevel, logger.GetLevel())

	logger.WithField("command", "date").Debug("command finished")
	assert.Contains(t, buf.String(), "command finished")
	assert.Contains(t, buf.String(), "command=date")
}

func TestNewFallsBackOnBadLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "chatty")
	assert.Equal(t, log.WarnLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), "invalid log level chatty")
}

func TestNewUsesEnvLevel(t *testing.T) {
	t.Setenv(EnvLevel, "error")
	logger := New(&bytes.Buffer{}, "")
	assert.Equal(t, log.ErrorLevel, logger.GetLevel())
}

func TestNewDefaultLevel(t *testing.T) {
	t.Setenv(EnvLevel, "")
	logger := New(&bytes.Buffer{}, "")
	assert.Equal(t, log.WarnLevel, logger.GetLevel())
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("dropped")
	assert.False(t, logger.IsLevelEnabled(log.ErrorLevel))
}
