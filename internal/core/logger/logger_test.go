package logger

import (
	"bytes"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"plantcare-community/internal/core/config"
)

type syncBuffer struct{ bytes.Buffer }

func (b *syncBuffer) Sync() error { return nil }

func TestBuildJSONWritesStructuredLine(t *testing.T) {
	var buf syncBuffer
	l, cleanup := Build(Options{Level: "info", JSON: true, Out: &buf})
	defer cleanup()

	l.Info("post created", zap.String("post_id", "p1"))
	l.Debug("hidden")
	_ = l.Sync()

	out := buf.String()
	assert.Contains(t, out, `"msg":"post created"`)
	assert.Contains(t, out, `"post_id":"p1"`)
	assert.NotContains(t, out, "hidden")
}

func TestToWriterAndStdRedirect(t *testing.T) {
	var buf syncBuffer
	l, cleanup := Build(Options{Level: "debug", JSON: true, Out: &buf})
	defer cleanup()

	w := ToWriter(l, zapcore.WarnLevel)
	_, err := w.Write([]byte("slow query\n"))
	require.NoError(t, err)

	undo := RedirectStdLog(l, zapcore.InfoLevel)
	log.Print("from std log")
	undo()

	out := buf.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, "slow query")
	assert.Contains(t, out, "from std log")
}

func TestFromConfigWithRotation(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := FromConfig(config.Log{Level: "info", JSON: true, File: config.LogFile{Enable: true, Filename: file, MaxSizeMB: 1}})
	l.Info("rotated")
	cleanup()
	assert.FileExists(t, file)
}
