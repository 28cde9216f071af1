package errors

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "hydration error",
			code:    "A001",
			wantMsg: "Auth state resolution failed",
			wantCat: CategoryHydration,
		},
		{
			name:    "channel error",
			code:    "A040",
			wantMsg: "WebSocket connection failed",
			wantCat: CategoryChannel,
		},
		{
			name:    "config error",
			code:    "A081",
			wantMsg: "Unknown channel backend",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "A999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryConfig, "file %q not found", "authsync.json")
	if err.Message != `file "authsync.json" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `file "authsync.json" not found`)
	}
	if err.Category != CategoryConfig {
		t.Errorf("Category = %q, want %q", err.Category, CategoryConfig)
	}
}

func TestSyncError_Error(t *testing.T) {
	err := New("A060")
	got := err.Error()
	want := "A060: Timed out waiting for hydration payload"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	// Without code
	err2 := &SyncError{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}
}

func TestSyncError_WithSuggestion(t *testing.T) {
	err := New("A081").WithSuggestion("set channel to memory, websocket, or blob")
	if err.Suggestion != "set channel to memory, websocket, or blob" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
}

func TestSyncError_WithDetail(t *testing.T) {
	err := New("A001").WithDetail("Custom detail")
	if err.Detail != "Custom detail" {
		t.Errorf("Detail = %q, want %q", err.Detail, "Custom detail")
	}
}

func TestSyncError_Wrap(t *testing.T) {
	inner := New("A040")
	outer := New("A041").Wrap(inner)

	if outer.Wrapped != inner {
		t.Error("Wrapped error mismatch")
	}
	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
}

func TestFromError(t *testing.T) {
	// nil error
	if FromError(nil, "A001") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	// Already SyncError
	se := New("A001")
	if FromError(se, "A002") != se {
		t.Error("FromError should return SyncError as-is")
	}

	// Standard error
	stdErr := &testError{msg: "test error"}
	result := FromError(stdErr, "A001")
	if result.Wrapped != stdErr {
		t.Error("Standard error should be wrapped")
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("A081").
		WithSuggestion("set channel to memory, websocket, or blob").
		Wrap(&testError{msg: "got \"redis\""})

	formatted := err.Format()

	if !strings.Contains(formatted, "A081") {
		t.Error("Format should contain error code")
	}
	if !strings.Contains(formatted, "Unknown channel backend") {
		t.Error("Format should contain error message")
	}
	if !strings.Contains(formatted, "cause:") {
		t.Error("Format should contain wrapped cause")
	}
	if !strings.Contains(formatted, "Hint:") {
		t.Error("Format should contain hint")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("A040").Wrap(&testError{msg: "dial tcp: refused"})
	compact := err.FormatCompact()

	want := "A040: WebSocket connection failed: dial tcp: refused"
	if compact != want {
		t.Errorf("FormatCompact() = %q, want %q", compact, want)
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate("A001")
	if !ok {
		t.Error("A001 should exist")
	}
	if template.Message != "Auth state resolution failed" {
		t.Error("Template message mismatch")
	}

	_, ok = GetTemplate("A999")
	if ok {
		t.Error("A999 should not exist")
	}
}

func TestRegister(t *testing.T) {
	Register("A999", ErrorTemplate{
		Category: CategoryCLI,
		Message:  "Custom test error",
		Detail:   "This is a test error",
	})

	err := New("A999")
	if err.Message != "Custom test error" {
		t.Errorf("Message = %q, want %q", err.Message, "Custom test error")
	}

	// Cleanup
	delete(registry, "A999")
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	got = wrapText("", 10)
	if len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
