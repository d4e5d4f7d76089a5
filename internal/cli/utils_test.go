package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/MaterialFill65/Search-kari/internal/models"
)

func sampleResponse() *models.SearchResponse {
	return &models.SearchResponse{
		QueryID:   "q-1",
		Query:     "cat dog",
		QueryTime: 3,
		Total:     2,
		Results: []*models.SearchResult{
			{
				ThreadID: 12,
				Title:    "Cats and dogs",
				URL:      "https://bbs.animanch.com/board/12/",
				Score:    11,
				Matches:  models.Matches{{Surface: "dog", Count: 1}, {Surface: "cat", Count: 3}},
				Rank:     1,
			},
			{
				ThreadID: 7,
				Title:    "Empty",
				Score:    1.5,
				Matches:  models.Matches{},
				Rank:     2,
			},
		},
	}
}

func TestWriteSearchResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputJSON); err != nil {
		t.Fatalf("WriteSearchResults(json): %v", err)
	}
	var decoded models.SearchResponse
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Total != 2 || len(decoded.Results) != 2 {
		t.Fatalf("decoded: %+v", decoded)
	}
	if decoded.Results[0].Matches[0].Surface != "dog" {
		t.Errorf("match order not preserved: %+v", decoded.Results[0].Matches)
	}
}

func TestWriteSearchResults_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`"cat dog": 2 threads in 3ms`,
		"#1 Cats and dogs",
		"https://bbs.animanch.com/board/12/",
		"Score: 11\n",
		`Matches: "dog": 1, "cat": 3`,
		"Score: 1.5\n",
		"Matches: 0\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "showing") {
		t.Error("all results shown; no truncation note expected")
	}
}

func TestWriteSearchResults_TextTruncated(t *testing.T) {
	resp := sampleResponse()
	resp.Total = 40
	var buf bytes.Buffer
	_ = WriteSearchResults(&buf, resp, OutputText)
	if !strings.Contains(buf.String(), "40 threads in 3ms, showing 2") {
		t.Errorf("missing truncation note:\n%s", buf.String())
	}
}

func TestWriteSearchResults_Compact(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSearchResults(&buf, sampleResponse(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if lines[0] != "12\t11\tCats and dogs\t\"dog\": 1, \"cat\": 3" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "7\t1.5\tEmpty\t0" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"compact", OutputCompact, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestFormatMatches(t *testing.T) {
	if got := FormatMatches(nil); got != "0" {
		t.Errorf("nil matches = %q", got)
	}
	if got := FormatMatches(models.Matches{{Surface: "猫", Count: 2}}); got != `"猫": 2` {
		t.Errorf("got %q", got)
	}
}

func TestWriteStatus(t *testing.T) {
	var status Status
	raw := `{"index":{"version":"v1","threads":3,"words":10,"title_words":4,"authors":2,"word_occurrences":25},
		"footprint":{"bytes":2048,"files":5},"config":{"index_source":"json","tokenizer":"kagome"}}`
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, &status, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"v1", "Threads:          3", "10 (25 occurrences)", "2.0 KiB in 5 files", "index_source:     json"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:           "0 B",
		1023:        "1023 B",
		1024:        "1.0 KiB",
		1536:        "1.5 KiB",
		5 * 1 << 20: "5.0 MiB",
	}
	for n, want := range tests {
		if got := FormatBytes(n); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}
