package logconfig

import (
	"testing"

	myLogger "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestConfigLoggerByName(t *testing.T) {
	defer ConfigInfoLogger()

	assert.NoError(t, ConfigLoggerByName("debug"))
	assert.Equal(t, myLogger.DebugLevel, myLogger.GetLevel())

	assert.NoError(t, ConfigLoggerByName(""))
	assert.Equal(t, myLogger.InfoLevel, myLogger.GetLevel())

	assert.NoError(t, ConfigLoggerByName("warn"))
	assert.Equal(t, myLogger.WarnLevel, myLogger.GetLevel())

	assert.Error(t, ConfigLoggerByName("loud"))
}
