// Package cli provides CLI output helpers for kari.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/MaterialFill65/Search-kari/internal/index"
	"github.com/MaterialFill65/Search-kari/internal/models"
	"github.com/MaterialFill65/Search-kari/internal/storage"
	"github.com/MaterialFill65/Search-kari/pkg/utils"
)

const compactTitleLen = 60

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one result per line.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a -output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	case OutputCompact:
		for _, r := range response.Results {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ThreadID, formatScore(r.Score), utils.Truncate(r.Title, compactTitleLen), FormatMatches(r.Matches))
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	shown := ""
	if len(response.Results) < response.Total {
		shown = fmt.Sprintf(", showing %d", len(response.Results))
	}
	fmt.Fprintf(w, "\n%q: %d threads in %dms%s\n\n", response.Query, response.Total, response.QueryTime, shown)
	for _, result := range response.Results {
		writeOneResult(w, result)
	}
}

func writeOneResult(w io.Writer, result *models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "#%d %s\n", result.Rank, result.Title)
	if result.URL != "" {
		fmt.Fprintf(w, "%s\n", result.URL)
	}
	fmt.Fprintf(w, "Score: %s\n", formatScore(result.Score))
	fmt.Fprintf(w, "Matches: %s\n\n", FormatMatches(result.Matches))
}

// FormatMatches renders matches as `"word": count` pairs in match order, or
// "0" when there are none.
func FormatMatches(m models.Matches) string {
	if len(m) == 0 {
		return "0"
	}
	parts := make([]string, len(m))
	for i, e := range m {
		parts[i] = fmt.Sprintf("%q: %d", e.Surface, e.Count)
	}
	return strings.Join(parts, ", ")
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// Status is the GET /api/v1/status response.
type Status struct {
	Index     index.Stats             `json:"index"`
	Footprint *storage.IndexFootprint `json:"footprint,omitempty"`
	Config    map[string]any          `json:"config"`
}

// WriteStatus writes a status report to w.
func WriteStatus(w io.Writer, status *Status, format OutputFormat) error {
	if format == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}
	fmt.Fprintf(w, "Index version:    %s\n", status.Index.Version)
	if !status.Index.LoadedAt.IsZero() {
		fmt.Fprintf(w, "Loaded at:        %s\n", status.Index.LoadedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "Threads:          %d\n", status.Index.Threads)
	fmt.Fprintf(w, "Words:            %d (%d occurrences)\n", status.Index.Words, status.Index.WordOccurrences)
	fmt.Fprintf(w, "Title words:      %d\n", status.Index.TitleWords)
	fmt.Fprintf(w, "Authors:          %d\n", status.Index.Authors)
	if status.Footprint != nil {
		fmt.Fprintf(w, "Disk usage:       %s in %d files\n", FormatBytes(status.Footprint.Bytes), status.Footprint.Files)
	}
	for _, key := range []string{"index_source", "index_location", "tokenizer", "merge_policy", "cache"} {
		if v, ok := status.Config[key]; ok {
			fmt.Fprintf(w, "%-18s%v\n", key+":", v)
		}
	}
	return nil
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
