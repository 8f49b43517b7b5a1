package message

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/filetalk/filetalk/internal/errors"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rec := New(TypeMessage, "alice", "hello world", SourceLocal)

	line, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if strings.ContainsRune(string(line), '\n') {
		t.Errorf("encoded line contains a newline: %q", line)
	}

	got, err := Decode(line)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Type != rec.Type || got.Nick != rec.Nick || got.Text != rec.Text ||
		got.TS != rec.TS || got.ID != rec.ID || got.Source != rec.Source {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, rec)
	}
}

func TestEncodeEscapesControlCharacters(t *testing.T) {
	rec := New(TypeMessage, "alice", "line one\nline two", SourceLocal)

	line, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if strings.ContainsRune(string(line), '\n') {
		t.Fatalf("newline in text leaked into the wire line: %q", line)
	}

	got, err := Decode(line)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.Text != "line one\nline two" {
		t.Errorf("text not preserved: got %q", got.Text)
	}
}

func TestEncodeValidation(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"empty nick", Record{Type: TypeMessage, Text: "hi"}},
		{"unknown type", Record{Type: Type("shout"), Nick: "alice"}},
		{"empty type", Record{Nick: "alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Encode(tt.rec); err == nil {
				t.Errorf("Encode(%+v) succeeded, want error", tt.rec)
			}
		})
	}
}

func TestEncodeSchemaFieldsWinOverExtra(t *testing.T) {
	rec := New(TypeMessage, "alice", "hi", SourceLocal)
	rec.Extra = map[string]any{"nick": "mallory", "color": "red"}

	line, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(line, &obj); err != nil {
		t.Fatalf("unmarshal encoded line: %v", err)
	}
	if obj["nick"] != "alice" {
		t.Errorf("nick = %v, want alice (schema field must win)", obj["nick"])
	}
	if obj["color"] != "red" {
		t.Errorf("extra key color = %v, want red", obj["color"])
	}
}

func TestDecodeRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"missing type", `{"nick":"a","ts":"T1","id":"m1"}`},
		{"missing nick", `{"type":"message","ts":"T1","id":"m1"}`},
		{"missing ts", `{"type":"message","nick":"a","id":"m1"}`},
		{"missing id", `{"type":"message","nick":"a","ts":"T1"}`},
		{"empty nick", `{"type":"message","nick":"","ts":"T1","id":"m1"}`},
		{"empty id", `{"type":"message","nick":"a","ts":"T1","id":""}`},
		{"non-string nick", `{"type":"message","nick":42,"ts":"T1","id":"m1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.line)); err == nil {
				t.Errorf("Decode(%s) succeeded, want error", tt.line)
			}
		})
	}
}

func TestDecodeEmptyTimestampAllowed(t *testing.T) {
	// ts is required to be present but its value is opaque; empty is legal.
	rec, err := Decode([]byte(`{"type":"message","nick":"a","text":"hi","ts":"","id":"m1"}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if rec.TS != "" {
		t.Errorf("TS = %q, want empty", rec.TS)
	}
}

func TestDecodeOpaqueTimestamp(t *testing.T) {
	rec, err := Decode([]byte(`{"type":"message","nick":"a","text":"hi","ts":"T1","id":"m1"}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if rec.TS != "T1" {
		t.Errorf("TS = %q, want T1", rec.TS)
	}
	if _, ok := rec.Time(); ok {
		t.Error("Time() parsed a non-RFC3339 timestamp")
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty line", ""},
		{"whitespace only", "   \t"},
		{"not json", "this is not json"},
		{"truncated json", `{"type":"message","nick":"a`},
		{"json array", `["type","message"]`},
		{"unknown type", `{"type":"shout","nick":"a","ts":"T1","id":"m1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.line))
			if err == nil {
				t.Fatalf("Decode(%q) succeeded, want error", tt.line)
			}
			var vErr *errors.ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("Decode(%q) error is %T, want *ValidationError", tt.line, err)
			}
		})
	}
}

func TestDecodeTrailingWhitespace(t *testing.T) {
	for _, suffix := range []string{"\n", "\r\n", "  \n", "\t"} {
		line := `{"type":"message","nick":"a","text":"hi","ts":"T1","id":"m1"}` + suffix
		if _, err := Decode([]byte(line)); err != nil {
			t.Errorf("Decode with suffix %q failed: %v", suffix, err)
		}
	}
}

func TestDecodePreservesUnknownKeys(t *testing.T) {
	line := `{"type":"message","nick":"a","text":"hi","ts":"T1","id":"m1","thread":"t-9","priority":2}`

	rec, err := Decode([]byte(line))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if rec.Extra["thread"] != "t-9" {
		t.Errorf("Extra[thread] = %v, want t-9", rec.Extra["thread"])
	}

	out, err := Encode(rec)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(out, &obj); err != nil {
		t.Fatalf("unmarshal re-encoded line: %v", err)
	}
	if obj["thread"] != "t-9" {
		t.Errorf("unknown key thread lost on round trip: %v", obj)
	}
	if obj["priority"] != float64(2) {
		t.Errorf("unknown key priority lost on round trip: %v", obj)
	}
}

func TestDecodeMissingOptionalFields(t *testing.T) {
	// text and source are absent in records from older producers.
	rec, err := Decode([]byte(`{"type":"join","nick":"a","ts":"T1","id":"m1"}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if rec.Text != "" || rec.Source != "" {
		t.Errorf("optional fields not empty: text=%q source=%q", rec.Text, rec.Source)
	}
}

func TestNewFillsFields(t *testing.T) {
	rec := New(TypeJoin, "bob", "", SourceLocal)
	if rec.ID == "" {
		t.Error("New left ID empty")
	}
	if rec.TS == "" {
		t.Error("New left TS empty")
	}
	if _, ok := rec.Time(); !ok {
		t.Errorf("New produced a non-RFC3339 timestamp: %q", rec.TS)
	}

	other := New(TypeJoin, "bob", "", SourceLocal)
	if rec.ID == other.ID {
		t.Error("two records share an ID")
	}
}

func TestIsPresence(t *testing.T) {
	if !(Record{Type: TypeJoin}).IsPresence() {
		t.Error("join is not presence")
	}
	if !(Record{Type: TypeLeave}).IsPresence() {
		t.Error("leave is not presence")
	}
	if (Record{Type: TypeMessage}).IsPresence() {
		t.Error("message is presence")
	}
}

func TestValidType(t *testing.T) {
	for _, typ := range []Type{TypeMessage, TypeJoin, TypeLeave} {
		if !ValidType(typ) {
			t.Errorf("ValidType(%q) = false", typ)
		}
	}
	for _, typ := range []Type{"", "shout", "Message"} {
		if ValidType(typ) {
			t.Errorf("ValidType(%q) = true", typ)
		}
	}
}
