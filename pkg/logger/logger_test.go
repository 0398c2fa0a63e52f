package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Format(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelInfo, &buf)

	log.Info("No available slots", String("program", "NEXUS"), Int("location", 5020))

	line := strings.TrimSpace(buf.String())
	assert.Regexp(t, `^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] INFO logger/logger_test\.go:\d+ No available slots program=NEXUS location=5020$`, line)
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelWarn, &buf)

	log.Debug("debug")
	log.Info("info")
	log.Warn("warn")
	log.Error("error")

	out := buf.String()
	assert.NotContains(t, out, "DEBUG")
	assert.NotContains(t, out, "INFO")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "ERROR")
	assert.Equal(t, LevelWarn, log.Level())
}

func TestLogger_MultipleSinks(t *testing.T) {
	var console, file bytes.Buffer
	log := New(LevelDebug, &console, &file)

	log.Debug("Requesting URL", String("url", "https://example.test/slots"))

	assert.Contains(t, console.String(), "Requesting URL")
	assert.Equal(t, console.String(), file.String())
}

func TestLogger_Fatal(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelInfo, &buf)

	code := -1
	log.exit = func(c int) { code = c }

	log.Fatal("Failed to load config", Error(errors.New("no such file")))

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "FATAL")
	assert.Contains(t, buf.String(), "error=no such file")
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelInfo, &buf)

	fl := log.WithFields(String("channel", "email"))
	fl.Info("Notification sent", Duration("took", 1500*time.Millisecond))

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "logger/logger_test.go:")
	assert.True(t, strings.HasSuffix(line, "Notification sent channel=email took=1.5s"), line)
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotPanics(t, func() {
		log.Error("ignored", Any("value", struct{}{}))
	})
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "FATAL", LevelFatal.String())
	assert.Equal(t, "LEVEL(9)", LogLevel(9).String())
}

func TestOpen_TruncatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "appointment.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))

	var console bytes.Buffer
	log, closer, err := Open(Options{Level: LevelInfo, Console: &console, FilePath: path})
	require.NoError(t, err)

	log.Info("Application started.")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "previous run")
	assert.Contains(t, string(data), "Application started.")
	assert.Contains(t, console.String(), "Application started.")
}

func TestOpen_BadPath(t *testing.T) {
	_, _, err := Open(Options{FilePath: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}

func TestOpen_NoSinks(t *testing.T) {
	log, closer, err := Open(Options{})
	require.NoError(t, err)
	assert.NotPanics(t, func() { log.Info("discarded") })
	assert.NoError(t, closer.Close())
}
