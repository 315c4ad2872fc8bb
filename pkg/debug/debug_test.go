package debug

import (
	"bytes"
	"strings"
	"testing"
)

func TestLog_DisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetEnabled(false)

	Log("hidden %d", 1)
	LogIf(true, "hidden")
	Section("hidden")
	LogEnterExit("hidden")()

	if buf.Len() != 0 {
		t.Errorf("expected no output while disabled, got %q", buf.String())
	}
}

func TestLog_EnabledWritesPrefixedLines(t *testing.T) {
	var buf bytes.Buffer
	SetEnabled(true)
	SetOutput(&buf)
	defer SetEnabled(false)

	Log("walked %d issues", 3)
	LogIf(false, "skipped")
	Section("render")
	Trace("render")()

	out := buf.String()
	for _, want := range []string{"[LT_DEBUG]", "walked 3 issues", "=== render ===", "-> render", "<- render"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "skipped") {
		t.Errorf("LogIf(false) should not write: %s", out)
	}
}
