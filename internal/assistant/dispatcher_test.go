package assistant

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/smileynet/toolbox/internal/contacts"
	"github.com/smileynet/toolbox/internal/logger"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		line     string
		wantCmd  string
		wantArgs []string
	}{
		{line: "hello world", wantCmd: "hello", wantArgs: []string{"world"}},
		{line: "ADD Alice 1234567890", wantCmd: "add", wantArgs: []string{"Alice", "1234567890"}},
		{line: "  phone   Bob  ", wantCmd: "phone", wantArgs: []string{"Bob"}},
		{line: "all", wantCmd: "all", wantArgs: []string{}},
		{line: "   ", wantCmd: "", wantArgs: nil},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, args := ParseInput(tt.line)
			if cmd != tt.wantCmd {
				t.Errorf("cmd = %q, want %q", cmd, tt.wantCmd)
			}
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDispatcher_Handle(t *testing.T) {
	tests := []struct {
		name     string
		setup    []string
		line     string
		want     []string
		wantQuit bool
	}{
		{name: "hello", line: "hello", want: []string{MsgGreeting}},
		{name: "hello case-insensitive", line: "HeLLo", want: []string{MsgGreeting}},
		{name: "exit", line: "exit", want: []string{MsgFarewell}, wantQuit: true},
		{name: "close with args", line: "close now", want: []string{MsgFarewell}, wantQuit: true},
		{name: "unknown", line: "dance", want: []string{MsgInvalidCommand}},
		{name: "blank", line: "", want: nil},
		{name: "add", line: "add Alice 1234567890", want: []string{MsgAdded}},
		{name: "add duplicate", setup: []string{"add Alice 1234567890"}, line: "add Alice 1234567890", want: []string{MsgExists}},
		{name: "add missing phone", line: "add Alice", want: []string{MsgAddUsage}},
		{name: "add too many", line: "add Alice 1 2", want: []string{MsgAddUsage}},
		{
			name: "add invalid phone",
			line: "add Alice 12",
			want: []string{"Error: Phone number must be 10 digits.", MsgInvalidContact},
		},
		{name: "change", setup: []string{"add Bob 1111111111"}, line: "change Bob 2222222222", want: []string{MsgUpdated}},
		{name: "change absent", line: "change Bob 2222222222", want: []string{MsgNotFound}},
		{name: "change usage", line: "change Bob", want: []string{MsgChangeUsage}},
		{name: "phone", setup: []string{"add Bob 1111111111"}, line: "phone Bob", want: []string{"Phone number for Bob: 1111111111"}},
		{name: "phone absent", line: "phone Bob", want: []string{MsgNotFound}},
		{name: "phone usage", line: "phone", want: []string{MsgPhoneUsage}},
		{name: "all empty", line: "all", want: []string{MsgNoContacts}},
		{name: "all with args", line: "all please", want: []string{MsgInvalidCommand}},
		{
			name:  "all in order",
			setup: []string{"add Bob 1111111111", "add Alice 2222222222"},
			line:  "all",
			want:  []string{"name: Bob phone: 1111111111", "name: Alice phone: 2222222222"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDispatcher(contacts.NewBook())
			for _, s := range tt.setup {
				d.Handle(s)
			}

			got := d.Handle(tt.line)

			if diff := cmp.Diff(tt.want, got.Lines); diff != "" {
				t.Errorf("Handle(%q) lines mismatch (-want +got):\n%s", tt.line, diff)
			}
			if got.Quit != tt.wantQuit {
				t.Errorf("Handle(%q) Quit = %v, want %v", tt.line, got.Quit, tt.wantQuit)
			}
		})
	}
}

func TestDispatcher_StrictDoesNotStoreInvalid(t *testing.T) {
	d := NewDispatcher(contacts.NewBook())

	d.Handle("add Alice abc")

	if d.Book().Len() != 0 {
		t.Errorf("Len() = %d, invalid contact should not be stored", d.Book().Len())
	}
}

func TestDispatcher_PermissiveReportsAndStores(t *testing.T) {
	// Given: a permissive book
	d := NewDispatcher(contacts.NewBook(contacts.WithPermissive()))

	// When: an invalid contact is added
	got := d.Handle("add Alice abc")

	// Then: the problem is reported and the contact is still stored
	want := []string{"Error: Phone number must be 10 digits.", MsgInvalidContact, MsgAdded}
	if diff := cmp.Diff(want, got.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
	if d.Book().Len() != 1 {
		t.Errorf("Len() = %d, want 1", d.Book().Len())
	}
}

func TestDispatcher_PermissiveChangeNotFound(t *testing.T) {
	d := NewDispatcher(contacts.NewBook(contacts.WithPermissive()))

	got := d.Handle("change Ghost 1")

	want := []string{"Error: Phone number must be 10 digits.", MsgInvalidContact, MsgNotFound}
	if diff := cmp.Diff(want, got.Lines); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcher_LogsBookState(t *testing.T) {
	// Given: debug file logging and a permissive book
	cleanup, err := logger.Setup(logger.Config{Dir: t.TempDir(), Debug: true})
	if err != nil {
		t.Fatal(err)
	}
	path := logger.Path()
	d := NewDispatcher(contacts.NewBook(contacts.WithPermissive()))

	// When: a contact is added and the list is shown
	d.Handle("add Alice 1234567890")
	d.Handle("all")
	if err := cleanup(); err != nil {
		t.Fatal(err)
	}

	// Then: the second dispatch event carries the stored count and mode
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("log line is not JSON: %q", line)
		}
		if ev["msg"] == "assistant.dispatch" && ev["command"] == "all" {
			found = true
			if ev["contacts"] != float64(1) || ev["permissive"] != true {
				t.Errorf("dispatch event = %v, want contacts=1 permissive=true", ev)
			}
		}
	}
	if !found {
		t.Errorf("no dispatch event for all:\n%s", data)
	}
}
