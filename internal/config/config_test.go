package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigRequiresTimebox(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("INTERVIEW_TIMEBOX_MS", "")
	os.Unsetenv("INTERVIEW_TIMEBOX_MS")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when INTERVIEW_TIMEBOX_MS is missing")
	}
}

func TestLoadConfigRejectsNonPositiveTimebox(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("INTERVIEW_TIMEBOX_MS", "0")

	_, err := LoadConfig()
	if !errors.Is(err, ErrInvalidTimebox) {
		t.Fatalf("expected ErrInvalidTimebox, got %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("INTERVIEW_TIMEBOX_MS", "240000")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Timebox() != 4*time.Minute {
		t.Fatalf("expected 4m timebox, got %v", cfg.Timebox())
	}
	if cfg.InterviewUnproductiveLimit != 2 {
		t.Fatalf("expected default unproductive limit 2, got %d", cfg.InterviewUnproductiveLimit)
	}
	if cfg.SessionTTL() != 2*time.Hour {
		t.Fatalf("expected default ttl 2h, got %v", cfg.SessionTTL())
	}
	if cfg.LLMTimeout() != time.Minute {
		t.Fatalf("expected default llm timeout 1m, got %v", cfg.LLMTimeout())
	}
}

func TestLoadScriptDefaultsWhenPathEmpty(t *testing.T) {
	script, err := LoadScript("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := script.RenderGreeting("Gal"); got != "Hi Gal, I'm Carrie. I'll be the one interviewing today!" {
		t.Fatalf("unexpected default greeting %q", got)
	}
}

func TestLoadScriptFromFileMergesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.toml")
	content := "interviewer = \"Dana\"\nbackground_question = \"Walk me through your last launch.\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	script, err := LoadScript(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if script.BackgroundQuestion != "Walk me through your last launch." {
		t.Fatalf("unexpected question %q", script.BackgroundQuestion)
	}
	if got := script.RenderGreeting("Gal"); got != "Hi Gal, I'm Dana. I'll be the one interviewing today!" {
		t.Fatalf("unexpected greeting %q", got)
	}
}

func TestParseScriptInvalidTOML(t *testing.T) {
	if _, err := ParseScript("greeting = "); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestLoadConfigRejectsNonPositiveUnproductiveLimit(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("INTERVIEW_TIMEBOX_MS", "240000")

	for _, v := range []string{"0", "-1"} {
		t.Setenv("INTERVIEW_UNPRODUCTIVE_LIMIT", v)
		_, err := LoadConfig()
		if !errors.Is(err, ErrInvalidUnproductiveLimit) {
			t.Fatalf("limit %s: expected ErrInvalidUnproductiveLimit, got %v", v, err)
		}
	}
}
