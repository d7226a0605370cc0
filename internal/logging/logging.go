// Package logging builds the zap loggers used by the qgrover command.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the level and sink of a logger.
type Options struct {
	Level string
	// File switches output from stderr to a rotating log file.
	File string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New returns a console-encoded logger. The closer releases the log file,
// if any.
func New(opts Options) (*zap.Logger, io.Closer, error) {
	level := zapcore.InfoLevel
	if opts.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(opts.Level); err != nil {
			return nil, nil, errors.Wrap(err, "log level")
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	if level == zapcore.DebugLevel {
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	enc := zapcore.NewConsoleEncoder(encCfg)

	var (
		ws     zapcore.WriteSyncer
		closer io.Closer = nopCloser{}
	)
	if opts.File == "" {
		ws = zapcore.Lock(os.Stderr)
	} else {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, nil, errors.Wrap(err, "log dir")
		}
		rot := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
		}
		ws = zapcore.AddSync(rot)
		closer = rot
	}

	core := zapcore.NewCore(enc, ws, level)
	return zap.New(core, zap.AddCaller()), closer, nil
}
