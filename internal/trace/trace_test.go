package trace_test

import (
	"context"
	"strings"
	"testing"

	"bopt/internal/trace"
)

// TestParseLevel covers the accepted spellings and the error path.
func TestParseLevel(t *testing.T) {
	cases := map[string]trace.Level{
		"off":    trace.LevelOff,
		"pass":   trace.LevelPass,
		"method": trace.LevelMethod,
		"PASS":   trace.LevelPass,
	}
	for s, want := range cases {
		got, err := trace.ParseLevel(s)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := trace.ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(\"verbose\") should fail")
	}
}

// TestWriter_Filters checks that events above the configured level are
// dropped.
func TestWriter_Filters(t *testing.T) {
	var sb strings.Builder
	tr := trace.NewWriter(&sb, trace.LevelPass)

	tr.Eventf(trace.LevelPass, "pass %d", 1)
	tr.Eventf(trace.LevelMethod, "method %s", "m")

	out := sb.String()
	if !strings.Contains(out, "pass 1") {
		t.Errorf("pass event missing:\n%s", out)
	}
	if strings.Contains(out, "method m") {
		t.Errorf("method event leaked through pass level:\n%s", out)
	}
}

// TestContext_Defaults checks the Nop fallback.
func TestContext_Defaults(t *testing.T) {
	if tr := trace.FromContext(context.Background()); tr != trace.Nop {
		t.Error("FromContext without a tracer should return Nop")
	}
	ctx := trace.WithTracer(context.Background(), nil)
	if tr := trace.FromContext(ctx); tr != trace.Nop {
		t.Error("WithTracer(nil) should store Nop")
	}
}
