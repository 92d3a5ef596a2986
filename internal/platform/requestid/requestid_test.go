package requestid

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := NewContext(context.Background(), "abc-123")
	if got := FromContext(ctx); got != "abc-123" {
		t.Errorf("FromContext = %q, want %q", got, "abc-123")
	}
	if got := FromContext(context.Background()); got != "" {
		t.Errorf("FromContext on empty context = %q, want empty", got)
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	Logger(NewContext(context.Background(), "req-1"), base).Info("hello")
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("log line missing request_id: %q", buf.String())
	}

	buf.Reset()
	Logger(context.Background(), base).Info("hello")
	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("log line has request_id without one in context: %q", buf.String())
	}
}
