package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
)

// TestOutput is a sample struct for testing
type TestOutput struct {
	Template  string `json:"template"`
	TargetDir string `json:"target_dir,omitempty"`
	Files     int    `json:"files"`
	Empty     string `json:"empty,omitempty"`
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	f := New(true, false, &buf, nil)

	if f == nil {
		t.Fatal("New returned nil")
	}
	if !f.JSON {
		t.Error("JSON should be true")
	}
	if f.Minimal {
		t.Error("Minimal should be false")
	}
	if f.ErrWriter == nil {
		t.Error("ErrWriter should default to stderr")
	}
}

func TestFormatter_Print_DefaultText(t *testing.T) {
	var buf bytes.Buffer
	f := New(false, false, &buf, nil)

	err := f.Print(TestOutput{Template: "express-api"}, func(w io.Writer, d interface{}) {
		w.Write([]byte("TEXT OUTPUT"))
	})
	if err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	if buf.String() != "TEXT OUTPUT" {
		t.Errorf("Expected text output, got: %s", buf.String())
	}
}

func TestFormatter_Print_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := New(true, false, &buf, nil)

	if err := f.Print(TestOutput{Template: "express-api", Files: 2}, nil); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if result["template"] != "express-api" {
		t.Errorf("template = %v", result["template"])
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("expected pretty-printed JSON")
	}
}

func TestFormatter_Print_MinimalJSON(t *testing.T) {
	var buf bytes.Buffer
	f := New(true, true, &buf, nil)

	data := map[string]interface{}{
		"template": "express-api",
		"stats":    map[string]interface{}{"files": 2, "bytes": 0},
		"empty":    "",
	}
	if err := f.Print(data, nil); err != nil {
		t.Fatalf("Print failed: %v", err)
	}

	out := strings.TrimSpace(buf.String())
	if strings.Contains(out, "\n") {
		t.Errorf("minimal JSON should be a single line: %s", out)
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result["t"] != "express-api" {
		t.Errorf("expected abbreviated template key, got %v", result)
	}
	if _, ok := result["empty"]; ok {
		t.Error("empty values should be dropped")
	}
	stats, ok := result["st"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected nested stats, got %v", result)
	}
	if stats["f"] != float64(2) {
		t.Errorf("stats.f = %v", stats["f"])
	}
	if _, ok := stats["b"]; ok {
		t.Error("zero bytes should be dropped")
	}
}

func TestFormatter_PrintError(t *testing.T) {
	tests := []struct {
		name       string
		json       bool
		minimal    bool
		wantOut    string
		wantErrOut string
	}{
		{"text", false, false, "", "Error: boom\n"},
		{"minimal text", false, true, "", "boom\n"},
		{"json", true, false, `"message": "boom"`, ""},
		{"minimal json", true, true, `"msg":"boom"`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			f := New(tt.json, tt.minimal, &out, &errOut)

			code := f.PrintError(errors.New("boom"), map[string]interface{}{"available": []string{"a"}})
			if code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if tt.wantOut != "" && !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("stdout = %q, want it to contain %q", out.String(), tt.wantOut)
			}
			if tt.wantErrOut != errOut.String() {
				t.Errorf("stderr = %q, want %q", errOut.String(), tt.wantErrOut)
			}
			if tt.json && !strings.Contains(out.String(), `"a"`) {
				t.Errorf("details missing from JSON: %s", out.String())
			}
		})
	}
}

func TestRelativePath(t *testing.T) {
	base := filepath.Join("/work", "project")

	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(base, "backend"), "backend"},
		{filepath.Join("/elsewhere", "x"), filepath.Join("/elsewhere", "x")},
		{"", ""},
	}

	for _, tt := range tests {
		if got := RelativePath(tt.path, base); got != tt.want {
			t.Errorf("RelativePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
