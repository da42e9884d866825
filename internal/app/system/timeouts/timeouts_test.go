package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaults(t *testing.T) {
	Reset()
	got := Current()
	want := Config{Ping: DefaultPing, Short: DefaultShort, Medium: DefaultMedium, Long: DefaultLong, External: DefaultExternal}
	if got != want {
		t.Fatalf("Current() = %+v, want %+v", got, want)
	}
}

func TestConfigureIgnoresZero(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Configure(Config{Short: 7 * time.Second})
	if Short() != 7*time.Second {
		t.Errorf("Short: got %v, want 7s", Short())
	}
	if Medium() != DefaultMedium {
		t.Errorf("Medium changed to %v", Medium())
	}
}

func TestConfigureFromEnv(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("TIMEOUT_PING", "500ms")
	t.Setenv("TIMEOUT_EXTERNAL", "2m")
	t.Setenv("TIMEOUT_LONG", "bogus")
	t.Setenv("TIMEOUT_SHORT", "-1s")

	if n := ConfigureFromEnv(); n != 2 {
		t.Errorf("configured: got %d, want 2", n)
	}
	if Ping() != 500*time.Millisecond {
		t.Errorf("Ping: got %v", Ping())
	}
	if External() != 2*time.Minute {
		t.Errorf("External: got %v", External())
	}
	if Long() != DefaultLong || Short() != DefaultShort {
		t.Errorf("invalid values should be ignored: long=%v short=%v", Long(), Short())
	}
}

func TestWithTimeoutLogsDeadline(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	log := zap.New(core)

	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, log, "slow op")
	<-ctx.Done()
	cancel()

	if logs.Len() != 1 {
		t.Fatalf("expected 1 warning, got %d", logs.Len())
	}
	if got := logs.All()[0].ContextMap()["operation"]; got != "slow op" {
		t.Errorf("operation field: got %v", got)
	}
}

func TestWithTimeoutQuietOnCancel(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	_, cancel := WithTimeout(context.Background(), time.Hour, zap.New(core), "fast op")
	cancel()
	if logs.Len() != 0 {
		t.Errorf("expected no warnings, got %d", logs.Len())
	}
}
