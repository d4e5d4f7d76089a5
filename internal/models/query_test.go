package models

import (
	"testing"
)

func TestSearchQuery_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		maxLimit int
		want     int
	}{
		{"zero limit takes max", 0, 100, 100},
		{"within bounds kept", 10, 100, 10},
		{"caps at max", 500, 100, 100},
		{"negative clamps", -3, 100, 100},
		{"unbounded max keeps zero", 0, 0, 0},
		{"unbounded max keeps limit", 42, 0, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &SearchQuery{Query: "x", Limit: tt.limit}
			q.Normalize(tt.maxLimit)
			if q.Limit != tt.want {
				t.Errorf("Normalize(%d) limit = %d, want %d", tt.maxLimit, q.Limit, tt.want)
			}
		})
	}
}

func TestSearchQuery_Blank(t *testing.T) {
	if !(&SearchQuery{Query: " \t"}).Blank() {
		t.Error("whitespace query should be blank")
	}
	if (&SearchQuery{Query: "-spoiler"}).Blank() {
		t.Error("negation-only query should not be blank")
	}
}

func TestParseThreadID(t *testing.T) {
	id, err := ParseThreadID("1234567")
	if err != nil {
		t.Fatal(err)
	}
	if id != 1234567 || id.String() != "1234567" {
		t.Errorf("ParseThreadID = %v", id)
	}
	for _, bad := range []string{"", "abc", "-1", "99999999999"} {
		if _, err := ParseThreadID(bad); err == nil {
			t.Errorf("ParseThreadID(%q) expected error", bad)
		}
	}
}
