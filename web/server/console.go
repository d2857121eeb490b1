package server

import (
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ConsoleMessage represents a log line forwarded to the browser console
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
}

// consoleCore is a zapcore.Core that sends entries to a console channel.
// Sends never block; messages are dropped when the channel is full.
type consoleCore struct {
	zapcore.LevelEnabler
	enc zapcore.Encoder
	out chan<- ConsoleMessage
}

// NewConsoleCore creates a core forwarding entries at or above level to out
func NewConsoleCore(level zapcore.LevelEnabler, out chan<- ConsoleMessage) zapcore.Core {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = ""
	encoderConfig.LevelKey = ""
	encoderConfig.NameKey = ""
	encoderConfig.CallerKey = ""
	encoderConfig.StacktraceKey = ""

	return &consoleCore{
		LevelEnabler: level,
		enc:          zapcore.NewConsoleEncoder(encoderConfig),
		out:          out,
	}
}

// WithConsole returns a logger that also writes to out
func WithConsole(logger *zap.Logger, level zapcore.LevelEnabler, out chan<- ConsoleMessage) *zap.Logger {
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, NewConsoleCore(level, out))
	}))
}

func (c *consoleCore) With(fields []zapcore.Field) zapcore.Core {
	clone := &consoleCore{
		LevelEnabler: c.LevelEnabler,
		enc:          c.enc.Clone(),
		out:          c.out,
	}
	for i := range fields {
		fields[i].AddTo(clone.enc)
	}
	return clone
}

func (c *consoleCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *consoleCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	message := strings.TrimSuffix(buf.String(), "\n")
	buf.Free()

	select {
	case c.out <- ConsoleMessage{Message: message, Timestamp: ent.Time, Level: ent.Level.String()}:
	default:
	}
	return nil
}

func (c *consoleCore) Sync() error {
	return nil
}
