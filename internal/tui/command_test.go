package tui

import "testing"

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		name  string
		args  string
	}{
		{"open site-42", "open", "site-42"},
		{"  refresh  ", "refresh", ""},
		{"attach /tmp/report.pdf", "attach", "/tmp/report.pdf"},
		{"ATTACH  notes.txt ", "attach", "notes.txt"},
		{"quit", "quit", ""},
	}

	for _, tt := range tests {
		got := ParseCommand(tt.input)
		if got.Name != tt.name || got.Args != tt.args {
			t.Errorf("ParseCommand(%q) = %+v, want {%s %s}", tt.input, got, tt.name, tt.args)
		}
	}
}
