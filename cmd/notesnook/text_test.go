package main

import (
	"testing"

	"github.com/streetwriters/notesnook-sub014/pkg/core"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "Single Line", in: "hello", want: "<p>hello</p>"},
		{name: "Blank Lines Dropped", in: "a\n\n  b  \n", want: "<p>a</p><p>b</p>"},
		{name: "Escaped", in: "1 < 2 & 3", want: "<p>1 &lt; 2 &amp; 3</p>"},
		{name: "Empty", in: "  \n ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toHTML(tt.in); got != tt.want {
				t.Errorf("toHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFilterNotes(t *testing.T) {
	notes := []core.Note{{Title: "Meeting 2024-03-01"}, {Title: "Shopping"}, {Title: "Meeting notes"}}

	noteMatch = "Meeting*"
	defer func() { noteMatch = "" }()

	got := filterNotes(notes)
	if len(got) != 2 {
		t.Fatalf("filterNotes() returned %d notes, want 2", len(got))
	}
	for _, n := range got {
		if n.Title == "Shopping" {
			t.Errorf("filterNotes() kept %q", n.Title)
		}
	}
}
