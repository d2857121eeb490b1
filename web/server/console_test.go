package server

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConsoleCore_BasicLogging(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := zap.New(NewConsoleCore(zapcore.InfoLevel, messageChan))

	logger.Info("Test log message")

	select {
	case msg := <-messageChan:
		if msg.Message != "Test log message" {
			t.Errorf("Expected message 'Test log message', got '%s'", msg.Message)
		}
		if msg.Level != "info" {
			t.Errorf("Expected level 'info', got '%s'", msg.Level)
		}
		if time.Since(msg.Timestamp) > time.Second {
			t.Errorf("Timestamp seems too old: %v", msg.Timestamp)
		}
	default:
		t.Error("Expected a console message")
	}
}

func TestConsoleCore_Fields(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := zap.New(NewConsoleCore(zapcore.InfoLevel, messageChan)).With(zap.String("render", "r-1"))

	logger.Info("frame rendered", zap.Int("samples", 12))

	msg := <-messageChan
	for _, want := range []string{"frame rendered", `"render": "r-1"`, `"samples": 12`} {
		if !strings.Contains(msg.Message, want) {
			t.Errorf("Expected %q in message, got %q", want, msg.Message)
		}
	}
}

func TestConsoleCore_LevelFilter(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	logger := zap.New(NewConsoleCore(zapcore.WarnLevel, messageChan))

	logger.Info("dropped")
	logger.Warn("kept")

	if len(messageChan) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messageChan))
	}
	if msg := <-messageChan; msg.Message != "kept" || msg.Level != "warn" {
		t.Errorf("Unexpected message %+v", msg)
	}
}

func TestConsoleCore_ChannelFull(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 1)
	logger := zap.New(NewConsoleCore(zapcore.InfoLevel, messageChan))

	// Sends past capacity must not block
	logger.Info("Message 1")
	logger.Info("Message 2")
	logger.Info("Message 3")

	if msg := <-messageChan; msg.Message != "Message 1" {
		t.Errorf("Expected first message to be kept, got %q", msg.Message)
	}
}

func TestWithConsole_Tee(t *testing.T) {
	messageChan := make(chan ConsoleMessage, 10)
	observedCore, observed := observer.New(zapcore.DebugLevel)
	logger := WithConsole(zap.New(observedCore), zapcore.InfoLevel, messageChan)

	logger.Info("Loading scene", zap.String("scene", "cornell"))

	if len(messageChan) != 1 {
		t.Errorf("Expected console message, got %d", len(messageChan))
	}
	if got := observed.Len(); got != 1 {
		t.Errorf("Expected base logger to receive the entry, got %d", got)
	}
}
