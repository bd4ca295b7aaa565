package logger

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"apply-agent/internal/application/port/output"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

// LoggerAdapter exposes a zap logger through the key/value LoggerPort.
type LoggerAdapter struct {
	sugar   *zap.SugaredLogger
	closers []func() error
}

func NewLoggerAdapter(l *zap.Logger) *LoggerAdapter {
	if l == nil {
		l = zap.NewNop()
	}
	return &LoggerAdapter{sugar: l.Sugar()}
}

func NewNop() *LoggerAdapter {
	return NewLoggerAdapter(zap.NewNop())
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{
		sugar:   l.sugar.With(key, value),
		closers: l.closers,
	}
}

func (l *LoggerAdapter) WithFields(fields map[string]any) output.LoggerPort {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}

	return &LoggerAdapter{
		sugar:   l.sugar.With(args...),
		closers: l.closers,
	}
}

// TeeFile returns a logger that also writes JSON lines to path. The file
// is closed by Close on the returned logger.
func (l *LoggerAdapter) TeeFile(path string, debug bool) (*LoggerAdapter, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(file), level)

	base := l.sugar.Desugar()
	tee := base.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))

	closers := append(append([]func() error(nil), l.closers...), file.Sync, file.Close)
	return &LoggerAdapter{sugar: tee.Sugar(), closers: closers}, nil
}

func (l *LoggerAdapter) Close() error {
	err := l.sugar.Sync()
	if isUnsyncable(err) {
		err = nil
	}
	for _, c := range l.closers {
		if cerr := c(); cerr != nil && !errors.Is(cerr, os.ErrClosed) && err == nil {
			err = cerr
		}
	}
	return err
}

// isUnsyncable reports the errors Sync returns for terminals and pipes.
func isUnsyncable(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EBADF)
}
