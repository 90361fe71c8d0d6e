package log

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Level(t *testing.T) {
	require.NoError(t, Init(Options{Level: "debug", NoColors: true}))
	assert.Equal(t, logrus.DebugLevel, Logger().GetLevel())

	assert.Error(t, Init(Options{Level: "loud"}))
}

func TestInit_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.log")
	require.NoError(t, Init(Options{Level: "info", File: path, NoColors: true}))

	Infof("session %s started", "abc")
	assert.FileExists(t, path)
}

func TestFields(t *testing.T) {
	require.NoError(t, Init(Options{Level: "info", NoColors: true}))
	var buf bytes.Buffer
	SetOutput(&buf)

	Info(Fields{"session": "abc"}, "tick")
	Debug(nil, "hidden")

	out := buf.String()
	assert.Contains(t, out, "session:abc")
	assert.Contains(t, out, "tick")
	assert.NotContains(t, out, "hidden")
}
