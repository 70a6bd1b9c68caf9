package task

import "testing"

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
		ok   bool
	}{
		{"low", PriorityLow, true},
		{"medium", PriorityMedium, true},
		{"high", PriorityHigh, true},
		{"max", PriorityMax, true},
		{"HIGH", PriorityHigh, true},
		{" max ", PriorityMax, true},
		{"mid", PriorityNone, false},
		{"top", PriorityNone, false},
		{"none", PriorityNone, false},
		{"bogus", PriorityNone, false},
		{"", PriorityNone, false},
	}
	for _, tt := range tests {
		got, ok := ParsePriority(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePriority(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPriorityUnmarshalText(t *testing.T) {
	tests := []struct {
		in   string
		want Priority
	}{
		{"high", PriorityHigh},
		{"mid", PriorityMedium}, // legacy spelling
		{"top", PriorityMax},    // legacy spelling
		{"none", PriorityNone},
		{"garbage", PriorityNone},
	}
	for _, tt := range tests {
		var got Priority
		if err := got.UnmarshalText([]byte(tt.in)); err != nil {
			t.Fatalf("UnmarshalText(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewSection(t *testing.T) {
	s := NewSection("Backlog")
	if !s.IsSection {
		t.Error("IsSection = false")
	}
	if s.Text != "Backlog" {
		t.Errorf("Text = %q", s.Text)
	}
	if s.ID == "" {
		t.Error("ID is empty")
	}
	if s.HasChildren() {
		t.Error("new section reports children")
	}
}
