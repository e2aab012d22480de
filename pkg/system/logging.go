package system

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hawkops/hawkops/pkg/hawkops/apierr"
)

const DefaultLogLevel = "info"

// ParseLevel maps a --log-level value onto a zap level. Empty selects info.
func ParseLevel(level string) (zapcore.Level, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		level = DefaultLogLevel
	}
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return lvl, apierr.Config("Invalid log level: %s", level).Wrap(err)
	}
	return lvl, nil
}

// NewLogger returns a console logger writing to w, or stderr when w is nil.
// Command output goes to stdout, so logs never mix with it.
func NewLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.CallerKey = ""
	encCfg.NameKey = ""
	encCfg.StacktraceKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}
