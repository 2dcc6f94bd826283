package cli

import (
	"io"
	"testing"
)

func withTerminal(t *testing.T, tty bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(io.Writer) bool { return tty }
	t.Cleanup(func() { isTerminal = orig })
}

func TestResolveUIModeAuto(t *testing.T) {
	withTerminal(t, true)
	decision, err := resolveUIMode("auto", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !decision.useLive {
		t.Fatalf("expected live UI on a TTY")
	}

	withTerminal(t, false)
	decision, err = resolveUIMode("", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if decision.useLive {
		t.Fatalf("expected plain output off a TTY")
	}
}

func TestResolveUIModeLiveFallsBack(t *testing.T) {
	withTerminal(t, false)
	decision, err := resolveUIMode("live", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if decision.useLive {
		t.Fatalf("expected fallback to plain output")
	}
	if decision.warning == "" {
		t.Fatalf("expected a fallback warning")
	}
}

func TestResolveUIModePlain(t *testing.T) {
	withTerminal(t, true)
	decision, err := resolveUIMode("plain", nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if decision.useLive {
		t.Fatalf("expected plain output even on a TTY")
	}
}

func TestResolveUIModeInvalid(t *testing.T) {
	if _, err := resolveUIMode("fancy", nil); err == nil {
		t.Fatalf("expected error for invalid mode")
	}
}
