// Package logging builds the logr.Logger shared by actpack components.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	crzap "sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Levels lists the accepted --log-level values.
var Levels = []string{"debug", "info", "warn", "error"}

// New returns a zap-backed logger writing to w (stderr when nil) at the given level.
func New(level string, w io.Writer) (logr.Logger, error) {
	lower := strings.ToLower(strings.TrimSpace(level))
	opts := crzap.Options{}
	var zapLevel zapcore.Level
	switch lower {
	case "debug":
		opts.Development = true
		zapLevel = zapcore.DebugLevel
	case "info", "":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return logr.Logger{}, fmt.Errorf("unknown log level %q (expected %s)", level, strings.Join(Levels, ", "))
	}
	if w == nil {
		w = os.Stderr
	}
	atomic := zap.NewAtomicLevelAt(zapLevel)
	opts.Level = &atomic
	opts.DestWriter = w
	return crzap.New(crzap.UseFlagOptions(&opts)), nil
}
