package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeAPI serves canned completions and records the last request body.
func fakeAPI(t *testing.T, content string) *map[string]interface{} {
	t.Helper()
	received := map[string]interface{}{}
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []interface{}{map[string]interface{}{
				"message":       map[string]interface{}{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
	t.Cleanup(api.Close)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_API_URL", api.URL)
	t.Setenv("CHATSHAPE_LOG_LEVEL", "off")
	return &received
}

func TestExecuteUsage(t *testing.T) {
	var out bytes.Buffer
	if err := Execute(context.Background(), nil, &out); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "Commands:") {
		t.Fatalf("expected usage, got %q", out.String())
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	err := Execute(context.Background(), []string{"bogus"}, io.Discard)
	if err == nil || !strings.Contains(err.Error(), `unknown command "bogus"`) {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestCallPrintsResult(t *testing.T) {
	fakeAPI(t, "Hello!")

	var out bytes.Buffer
	err := Execute(context.Background(), []string{"call", "--prompt", "Say hello!", "--options", `{"config":{"model":"gpt-4o-mini"}}`}, &out)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	want := `{"output":"Hello!","token_usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15},"cached":false}`
	if strings.TrimSpace(out.String()) != want {
		t.Fatalf("got %s, want %s", out.String(), want)
	}
}

func TestCallWithMessagesAndOptionsFile(t *testing.T) {
	received := fakeAPI(t, `{"n": 4}`)

	path := filepath.Join(t.TempDir(), "options.yaml")
	yamlBody := "config:\n  model: gpt-3.5-turbo\n  temperature: 0.2\n  response_format:\n    type: json_object\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("write options: %v", err)
	}

	var out bytes.Buffer
	args := []string{"call",
		"--messages", `[{"role":"user","content":"What is 2+2?"}]`,
		"--options-file", path,
		"--options", `{"config":{"max_tokens":50}}`,
		"--context", `{"vars":{}}`,
	}
	if err := Execute(context.Background(), args, &out); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), `"output":{"n":4}`) {
		t.Fatalf("unexpected output %s", out.String())
	}

	sent := *received
	if sent["model"] != "gpt-3.5-turbo" || sent["temperature"] != 0.2 || sent["max_tokens"] != float64(50) {
		t.Fatalf("unexpected request params %v", sent)
	}
	msgs, _ := sent["messages"].([]interface{})
	if len(msgs) != 2 {
		t.Fatalf("expected JSON instruction to be prepended, got %v", msgs)
	}
}

func TestCallFailureStillPrintsResult(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("CHATSHAPE_LOG_LEVEL", "off")

	var out bytes.Buffer
	if err := Execute(context.Background(), []string{"call", "--prompt", "hi"}, &out); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), `"error_type":"provider_error"`) {
		t.Fatalf("expected failure result, got %s", out.String())
	}
}

func TestCallRejectsBadArguments(t *testing.T) {
	t.Setenv("CHATSHAPE_LOG_LEVEL", "off")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no prompt", []string{"call"}, "exactly one of --prompt or --messages"},
		{"both prompts", []string{"call", "--prompt", "a", "--messages", "[]"}, "exactly one of --prompt or --messages"},
		{"bad options", []string{"call", "--prompt", "a", "--options", "{"}, "parse options"},
		{"bad context", []string{"call", "--prompt", "a", "--context", "{"}, "--context must be valid JSON"},
		{"out of range", []string{"call", "--prompt", "a", "--options", `{"config":{"top_p":3}}`}, "config.top_p"},
		{"invalid messages", []string{"call", "--messages", `[{"role":"robot","content":"x"}]`}, "message role must be"},
		{"undecodable messages", []string{"call", "--messages", `[{`}, "decode messages"},
		{"bad log level", []string{"call", "--prompt", "a", "--log-level", "loud"}, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Execute(context.Background(), tt.args, io.Discard)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestModels(t *testing.T) {
	var out bytes.Buffer
	if err := Execute(context.Background(), []string{"models"}, &out); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "gpt-3.5-turbo") || !strings.Contains(out.String(), "legacy") {
		t.Fatalf("unexpected listing %s", out.String())
	}

	out.Reset()
	if err := Execute(context.Background(), []string{"models", "--classify", "gpt-4o"}, &out); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != "gpt-4o\tnative" {
		t.Fatalf("unexpected classification %q", out.String())
	}
}
