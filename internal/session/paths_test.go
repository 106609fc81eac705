package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir(t *testing.T) {
	home, _ := os.UserHomeDir()
	got := Dir("default")
	want := filepath.Join(home, ".siteline", "profiles", "default")
	if got != want {
		t.Errorf("Dir(default) = %q, want %q", got, want)
	}
}

func TestCredentialsPath(t *testing.T) {
	got := CredentialsPath("test")
	if !strings.HasSuffix(got, filepath.Join("profiles", "test", "credentials.toml")) {
		t.Errorf("CredentialsPath(test) = %q, want suffix profiles/test/credentials.toml", got)
	}
}

func TestLockPath(t *testing.T) {
	got := LockPath("test")
	if !strings.HasSuffix(got, filepath.Join("profiles", "test", "LOCK")) {
		t.Errorf("LockPath(test) = %q, want suffix profiles/test/LOCK", got)
	}
}

func TestLogPath(t *testing.T) {
	got := LogPath("test")
	if !strings.HasSuffix(got, filepath.Join("logs", "siteline.log")) {
		t.Errorf("LogPath(test) = %q, want suffix logs/siteline.log", got)
	}
}
