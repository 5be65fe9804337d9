package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	var debugBuf bytes.Buffer
	log, err := New("DEBUG", &debugBuf)
	if err != nil {
		t.Fatalf("New(debug): %v", err)
	}
	log.V(1).Info("staging folder")
	if !strings.Contains(debugBuf.String(), "staging folder") {
		t.Fatalf("debug logger dropped V(1) message: %q", debugBuf.String())
	}

	var infoBuf bytes.Buffer
	log, err = New("info", &infoBuf)
	if err != nil {
		t.Fatalf("New(info): %v", err)
	}
	log.V(1).Info("hidden")
	log.Info("bundler compilation warnings")
	out := infoBuf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "bundler compilation warnings") {
		t.Fatalf("unexpected info output %q", out)
	}

	if _, err := New("verbose", nil); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
