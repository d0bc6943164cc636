package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/soulthread/memoria/pkg/utils/logging"
)

func TestNewLevels(t *testing.T) {
	testCases := []struct {
		level       string
		expectDebug bool
		expectInfo  bool
		expectWarn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"warning", false, false, true},
		{"DEBUG", true, true, true},
		{"invalid", false, true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.New(tc.level, buf)

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Warn("warn message")

			output := buf.String()
			check := func(expect bool, msg string) {
				if expect {
					gt.S(t, output).Contains(msg)
				} else {
					gt.S(t, output).NotContains(msg)
				}
			}
			check(tc.expectDebug, "debug message")
			check(tc.expectInfo, "info message")
			check(tc.expectWarn, "warn message")
		})
	}
}

func TestNewJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.NewJSON("info", buf)

	logger.Debug("hidden")
	logger.Info("request done", "request_id", "abc", "status", 200)

	var record struct {
		Msg       string `json:"msg"`
		RequestID string `json:"request_id"`
		Status    int    `json:"status"`
	}
	gt.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	gt.Equal(t, record.Msg, "request done")
	gt.Equal(t, record.RequestID, "abc")
	gt.Equal(t, record.Status, 200)
}

func TestNewJSONRendersGoerrValues(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.NewJSON("info", buf)

	err := goerr.New("query failed", goerr.V("collection", "voiceEvents"))
	logger.Error("failed", "error", err)

	gt.S(t, buf.String()).Contains("query failed")
}

func TestNewWithFormat(t *testing.T) {
	for _, format := range []string{"", "console", "json", "JSON"} {
		logger, err := logging.NewWithFormat(format, "info", &bytes.Buffer{})
		gt.NoError(t, err)
		gt.V(t, logger).NotNil()
	}

	_, err := logging.NewWithFormat("xml", "info", &bytes.Buffer{})
	gt.Error(t, err)
}

func TestWithAndFrom(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New("debug", buf).With("request_id", "r-1")
	ctx := logging.With(context.Background(), logger)

	retrieved := logging.From(ctx)
	gt.Equal(t, retrieved, logger)

	retrieved.Info("context message")
	gt.S(t, buf.String()).Contains("context message")
	gt.S(t, buf.String()).Contains("r-1")
}

func TestFromUsesDefault(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	buf := &bytes.Buffer{}
	custom := logging.New("warn", buf)
	logging.SetDefault(custom)

	retrieved := logging.From(context.Background())
	gt.Equal(t, retrieved, custom)

	retrieved.Warn("warning from default")
	gt.S(t, buf.String()).Contains("warning from default")
}
