// package formatter renders sync records and marketing lists to various formats (CSV, Markdown, JSON, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/shared"
)

// Format names an output format for [Render].
type Format string

const (
	Text     Format = "text"
	CSV      Format = "csv"
	Markdown Format = "markdown"
	JSON     Format = "json"
)

// Formats lists the accepted format names in display order.
var Formats = []Format{Text, CSV, Markdown, JSON}

// ParseFormat accepts a format name in any case; "md" is an alias for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Text, CSV, Markdown, JSON:
		return f, nil
	case "md":
		return Markdown, nil
	case "":
		return Text, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

const emptyCell = "-"

// FormatTime renders an optional timestamp in UTC RFC 3339, or a dash when unset.
func FormatTime(t *time.Time) string {
	if t == nil {
		return emptyCell
	}
	return t.UTC().Format(time.RFC3339)
}

func orEmpty(s string) string {
	if s == "" {
		return emptyCell
	}
	return s
}

// SyncRecordsToCSV converts sync records to CSV with columns:
// ID, Batch ID, Status, Submitted At, Completed At, Total, Finished, Errored, Marketing List
func SyncRecordsToCSV(records []*models.SyncRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Batch ID", "Status", "Submitted At", "Completed At", "Total", "Finished", "Errored", "Marketing List"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.ID(),
			rec.BatchID,
			rec.Status,
			FormatTime(rec.SubmittedAt),
			FormatTime(rec.CompletedAt),
			strconv.Itoa(rec.TotalOperations),
			strconv.Itoa(rec.FinishedOperations),
			strconv.Itoa(rec.ErroredOperations),
			rec.MarketingListID,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// SyncRecordsToMarkdown renders sync records as a Markdown table under title
func SyncRecordsToMarkdown(records []*models.SyncRecord, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Mailchimp Syncs"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Records**: %d\n\n", len(records)))

	if len(records) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Batch | Status | Submitted | Completed | Finished | Errored |\n")
	buf.WriteString("|---|-------|--------|-----------|-----------|----------|---------|\n")
	for _, rec := range records {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s | %d/%d | %d |\n",
			rec.Sequence(), orEmpty(rec.BatchID), orEmpty(rec.Status),
			FormatTime(rec.SubmittedAt), FormatTime(rec.CompletedAt),
			rec.FinishedOperations, rec.TotalOperations, rec.ErroredOperations))
	}

	return buf.Bytes(), nil
}

// SyncRecordsToText converts sync records to plain text, one line per record
func SyncRecordsToText(records []*models.SyncRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Syncs: %d\n\n", len(records)))
	for _, rec := range records {
		buf.WriteString(fmt.Sprintf("%d. %s [%s] %d/%d finished, %d errored (submitted %s)\n",
			rec.Sequence(), orEmpty(rec.BatchID), orEmpty(rec.Status),
			rec.FinishedOperations, rec.TotalOperations, rec.ErroredOperations, FormatTime(rec.SubmittedAt)))
	}

	return buf.Bytes(), nil
}

// SyncRow is the JSON shape of a sync record
type SyncRow struct {
	ID                 string     `json:"id"`
	Sequence           int        `json:"sequence"`
	BatchID            string     `json:"batch_id"`
	Status             string     `json:"status"`
	SubmittedAt        *time.Time `json:"submitted_at"`
	CompletedAt        *time.Time `json:"completed_at"`
	TotalOperations    int        `json:"total_operations"`
	FinishedOperations int        `json:"finished_operations"`
	ErroredOperations  int        `json:"errored_operations"`
	MarketingListID    string     `json:"marketing_list_id,omitempty"`
}

// NewSyncRow projects rec to its JSON shape
func NewSyncRow(rec *models.SyncRecord) SyncRow {
	return SyncRow{
		ID:                 rec.ID(),
		Sequence:           rec.Sequence(),
		BatchID:            rec.BatchID,
		Status:             rec.Status,
		SubmittedAt:        rec.SubmittedAt,
		CompletedAt:        rec.CompletedAt,
		TotalOperations:    rec.TotalOperations,
		FinishedOperations: rec.FinishedOperations,
		ErroredOperations:  rec.ErroredOperations,
		MarketingListID:    rec.MarketingListID,
	}
}

// SyncRecordsToJSON serializes sync records; pretty indents the output
func SyncRecordsToJSON(records []*models.SyncRecord, pretty bool) ([]byte, error) {
	out := make([]SyncRow, 0, len(records))
	for _, rec := range records {
		out = append(out, NewSyncRow(rec))
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Render converts sync records to the given format
func Render(format Format, records []*models.SyncRecord) ([]byte, error) {
	switch format {
	case Text, "":
		return SyncRecordsToText(records)
	case CSV:
		return SyncRecordsToCSV(records)
	case Markdown:
		return SyncRecordsToMarkdown(records, "")
	case JSON:
		return SyncRecordsToJSON(records, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport renders sync records and writes them to path.
//
// Defaults to syncs.{ext} in the working directory.
func WriteExport(format Format, records []*models.SyncRecord, path string) (string, error) {
	if path == "" {
		path = "syncs." + Extension(format)
	}

	data, err := Render(format, records)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

// Extension returns the file extension for format
func Extension(format Format) string {
	switch format {
	case CSV:
		return "csv"
	case Markdown:
		return "md"
	case JSON:
		return "json"
	default:
		return "txt"
	}
}

// ListsToText renders marketing lists as plain text, one line per list
func ListsToText(lists []*models.MarketingList) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Marketing lists: %d\n\n", len(lists)))
	for _, list := range lists {
		buf.WriteString(fmt.Sprintf("%d. %s (%s) %s -> %s\n",
			list.Sequence(), list.Name, orEmpty(string(list.MemberType())), list.ID(), orEmpty(list.ExternalListID)))
	}

	return buf.Bytes()
}
