package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	assert "github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer func() {
		SetOutput(os.Stderr)
		Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
		Logger.SetLevel(logrus.InfoLevel)
	}()

	assert.NoError(t, Configure("debug", "json"))
	WithDevice("leaf1").WithField("interface", "swp1").Debug("reading link state")

	entry := map[string]interface{}{}
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "leaf1", entry["device"])
	assert.Equal(t, "swp1", entry["interface"])
	assert.Equal(t, "debug", entry["level"])
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	assert.Error(t, SetLevel("chatty"))
}

func TestWithTarget(t *testing.T) {
	e := WithTarget("netconf", "10.0.0.1:830")
	assert.Equal(t, "netconf", e.Data["protocol"])
	assert.Equal(t, "10.0.0.1:830", e.Data["target"])
}
