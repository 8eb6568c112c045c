package reconcile

import (
	"testing"

	"github.com/Junheng-Zheng/Junbot/internal/domain"
)

func TestAddedPattern(t *testing.T) {
	cases := []struct {
		text  string
		want  domain.AddTask
		match bool
	}{
		{"Added Psych Quiz for 3/14/26.", domain.AddTask{Title: "Psych Quiz", DueLabel: "3/14/26"}, true},
		{"Added task Psych Quiz for DUE TMR.", domain.AddTask{Title: "Psych Quiz", DueLabel: "DUE TMR"}, true},
		{"Ok, added Psych Quiz due 3/14/26.", domain.AddTask{Title: "Psych Quiz", DueLabel: "3/14/26"}, true},
		{"ADDED gym for due today", domain.AddTask{Title: "gym", DueLabel: "DUE TODAY"}, true},
		{"I completed Psych Quiz for 3/14/26.", domain.AddTask{}, false},
		{"Added Psych Quiz for next week.", domain.AddTask{}, false},
		{"Removed Psych Quiz.", domain.AddTask{}, false},
	}

	for _, tc := range cases {
		got, ok := AddedPattern{}.Recover(tc.text)
		if ok != tc.match {
			t.Errorf("Recover(%q) match=%v, want %v", tc.text, ok, tc.match)
			continue
		}
		if !ok {
			continue
		}
		if got != tc.want {
			t.Errorf("Recover(%q) = %+v, want %+v", tc.text, got, tc.want)
		}
	}
}
