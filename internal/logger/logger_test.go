package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromContext_AddsRequestAndUser(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("development", &buf)
	t.Cleanup(func() { Init("development") })

	ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "u-42")
	FromContext(ctx).Info("hello", "k", "v")

	out := buf.String()
	for _, want := range []string{"level=INFO", "msg=hello", "request_id=req-1", "user_id=u-42", "k=v"} {
		require.Contains(t, out, want)
	}
}

func TestWorkerLog_Levels(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { Init("development") })

	WorkerLog("thumbnails", "resize", nil, "width", 100)
	WorkerLog("thumbnails", "resize", errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"level":"INFO"`)
	require.Contains(t, lines[0], `"width":100`)
	require.Contains(t, lines[1], `"level":"ERROR"`)
	require.Contains(t, lines[1], `"error":"boom"`)
}
