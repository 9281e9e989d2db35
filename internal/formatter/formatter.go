// package formatter renders sync results, previews, and history as reports and tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/desertthunder/sinkmuzik/internal/models"
	"github.com/desertthunder/sinkmuzik/internal/shared"
	"github.com/desertthunder/sinkmuzik/internal/tasks"
)

// Report formats accepted by [WriteReport].
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatText = "txt"
)

// reportRow is the serialized form of one [tasks.Outcome].
type reportRow struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Decision    string `json:"decision"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

type reportDoc struct {
	Total      int         `json:"total"`
	Succeeded  int         `json:"succeeded"`
	Failed     int         `json:"failed"`
	Skipped    int         `json:"skipped"`
	Transcoded int         `json:"transcoded"`
	Copied     int         `json:"copied"`
	DurationMS int64       `json:"duration_ms"`
	Files      []reportRow `json:"files"`
}

func toRow(o tasks.Outcome) reportRow {
	row := reportRow{
		Source:      o.Source,
		Destination: o.Destination,
		Decision:    o.Decision.String(),
		Status:      "ok",
		DurationMS:  o.Duration.Milliseconds(),
	}
	if o.Err != nil {
		row.Status = "failed"
		row.Error = o.Err.Error()
	}
	return row
}

// ReportToJSON converts a SyncResult to an indented JSON document with the totals and one entry per file.
func ReportToJSON(result *tasks.SyncResult) ([]byte, error) {
	doc := reportDoc{
		Total:      result.Total,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
		Skipped:    result.Skipped,
		Transcoded: result.Transcoded(),
		Copied:     result.Copied(),
		DurationMS: result.Duration.Milliseconds(),
		Files:      make([]reportRow, 0, len(result.Outcomes)),
	}
	for _, o := range result.Outcomes {
		doc.Files = append(doc.Files, toRow(o))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// ReportToCSV converts a SyncResult to CSV with columns: Source, Destination, Decision, Status, Error, DurationMS
func ReportToCSV(result *tasks.SyncResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Source", "Destination", "Decision", "Status", "Error", "DurationMS"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, o := range result.Outcomes {
		row := toRow(o)
		record := []string{
			row.Source,
			row.Destination,
			row.Decision,
			row.Status,
			row.Error,
			strconv.FormatInt(row.DurationMS, 10),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToText converts a SyncResult to a plain text summary followed by one line per file
func ReportToText(result *tasks.SyncResult) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%d of %d files converted and saved successfully\n", result.Succeeded, result.Total)
	fmt.Fprintf(&buf, "Transcoded: %d, Copied: %d, Failed: %d, Skipped: %d\n", result.Transcoded(), result.Copied(), result.Failed, result.Skipped)
	fmt.Fprintf(&buf, "Duration: %s\n\n", result.Duration.Round(time.Millisecond))

	for i, o := range result.Outcomes {
		if o.Err != nil {
			fmt.Fprintf(&buf, "%d. [failed] %s: %v\n", i+1, o.Source, o.Err)
			continue
		}
		fmt.Fprintf(&buf, "%d. [%s] %s -> %s\n", i+1, o.Decision, o.Source, o.Destination)
	}

	return buf.Bytes(), nil
}

// WriteReport renders result in format and writes it to path, creating parent directories.
//
// An empty format is inferred from the extension of path and falls back to text.
func WriteReport(result *tasks.SyncResult, format, path string) error {
	if path == "" {
		return fmt.Errorf("%w: report path is empty", shared.ErrMissingArgument)
	}
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = ReportToJSON(result)
	case FormatCSV:
		data, err = ReportToCSV(result)
	case FormatText, "text", "":
		data, err = ReportToText(result)
	default:
		return fmt.Errorf("%w: unknown report format %q (json, csv, txt)", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Alignment of a table column.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// RenderTable renders rows under headers as a rounded go-pretty table.
//
// Headers are printed as given. Short rows are padded with empty cells and extra cells are dropped.
func RenderTable(headers []string, rows [][]string, aligns []Alignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// PreviewTable renders the planned mappings of a preview as a table.
func PreviewTable(result *tasks.PreviewResult) string {
	rows := make([][]string, 0, len(result.Entries))
	for _, e := range result.Entries {
		rows = append(rows, []string{e.Source, e.Destination, strconv.FormatInt(e.SizeMB, 10)})
	}
	return RenderTable(
		[]string{"Source", "Destination", "Size (MB)"},
		rows,
		[]Alignment{AlignLeft, AlignLeft, AlignRight},
	)
}

// PreviewFooter is the summary line printed after a preview.
func PreviewFooter(result *tasks.PreviewResult) string {
	return fmt.Sprintf("%d file(s) will be transferred, with a total size of %d MB", result.Count, result.SizeMB)
}

// HistoryTable renders past sync runs, newest first as given.
func HistoryTable(runs []*models.SyncRun) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			strconv.Itoa(r.Sequence()),
			r.StartedAt().Format(time.DateTime),
			string(r.Status()),
			r.Policy().String(),
			r.Format(),
			strconv.Itoa(r.Succeeded()),
			strconv.Itoa(r.Failed()),
			strconv.Itoa(r.Skipped()),
			formatDuration(r.Duration()),
			r.SourceDir(),
		})
	}
	return RenderTable(
		[]string{"#", "Started", "Status", "Policy", "Format", "OK", "Failed", "Skipped", "Took", "Source"},
		rows,
		[]Alignment{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight},
	)
}

// OutcomeTable renders recorded file outcomes of a run.
func OutcomeTable(outcomes []*models.FileOutcome) string {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		status := "ok"
		if !o.Succeeded() {
			status = o.ErrorMessage()
		}
		rows = append(rows, []string{o.Source(), o.Decision().String(), status})
	}
	return RenderTable([]string{"Source", "Decision", "Result"}, rows, nil)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}
