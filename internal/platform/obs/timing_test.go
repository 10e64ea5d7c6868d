package obs

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(prev) })
	return &buf
}

func TestRequestID(t *testing.T) {
	if got := RequestID(context.Background()); got != "-" {
		t.Fatalf("RequestID(background) = %q, want -", got)
	}
	ctx := WithRequestID(context.Background(), "abc")
	if got := RequestID(ctx); got != "abc" {
		t.Fatalf("RequestID = %q, want abc", got)
	}
}

func TestTimeLogsOperationAndError(t *testing.T) {
	buf := captureLog(t)
	ctx := WithRequestID(context.Background(), "r1")

	var err error
	Time(ctx, "op.ok")(&err)
	err = errors.New("boom")
	Time(ctx, "op.fail")(&err)

	out := buf.String()
	if !strings.Contains(out, "req_id=r1 op=op.ok") {
		t.Fatalf("missing ok line in %q", out)
	}
	if !strings.Contains(out, "op=op.fail") || !strings.Contains(out, "err=boom") {
		t.Fatalf("missing error line in %q", out)
	}
}
