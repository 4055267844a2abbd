package feedback

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Export formats for a club summary.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatPDF   = "pdf"
)

// SummaryExporter renders a club summary as a downloadable file and returns
// the bytes, the suggested file name and the MIME type.
type SummaryExporter interface {
	Export(club string, summary ClubSummary, format string) ([]byte, string, string, error)
}

type summaryExporter struct {
	now func() time.Time
}

// NewSummaryExporter returns the default exporter.
func NewSummaryExporter() SummaryExporter {
	return &summaryExporter{now: time.Now}
}

func (e *summaryExporter) Export(club string, summary ClubSummary, format string) ([]byte, string, string, error) {
	base := fmt.Sprintf("%s_summary_%s", fileSafe(club), e.now().Format("20060102_150405"))

	switch strings.ToLower(format) {
	case FormatCSV, "":
		data, err := e.exportCSV(summary)
		if err != nil {
			return nil, "", "", err
		}
		return data, base + ".csv", "text/csv", nil

	case FormatExcel, "xlsx":
		data, err := e.exportExcel(club, summary)
		if err != nil {
			return nil, "", "", err
		}
		return data, base + ".xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatPDF:
		data, err := e.exportPDF(club, summary)
		if err != nil {
			return nil, "", "", err
		}
		return data, base + ".pdf", "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported export format: %s", format)
	}
}

func summaryRows(summary ClubSummary) [][]string {
	rows := [][]string{
		{"Metric", "Value"},
		{"Positive", strconv.Itoa(summary.SentimentTotals.Positive)},
		{"Neutral", strconv.Itoa(summary.SentimentTotals.Neutral)},
		{"Negative", strconv.Itoa(summary.SentimentTotals.Negative)},
		{"Total Participation", strconv.Itoa(summary.TotalParticipation)},
	}
	for i, f := range summary.TopPositive {
		rows = append(rows, []string{fmt.Sprintf("Top Positive %d", i+1), f})
	}
	for i, f := range summary.TopNegative {
		rows = append(rows, []string{fmt.Sprintf("Top Negative %d", i+1), f})
	}
	return rows
}

var eventHeaders = []string{"Event", "Date", "Participation"}

func (e *summaryExporter) exportCSV(summary ClubSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.WriteAll(summaryRows(summary)); err != nil {
		return nil, err
	}
	if err := writer.Write(nil); err != nil {
		return nil, err
	}
	if err := writer.Write(eventHeaders); err != nil {
		return nil, err
	}
	for _, ev := range summary.Events {
		if err := writer.Write([]string{ev.Event, ev.Date, ev.Strength}); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *summaryExporter) exportExcel(club string, summary ClubSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	const eventsSheet = "Events"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(eventsSheet); err != nil {
		return nil, err
	}

	f.SetCellValue(summarySheet, "A1", club)
	for i, row := range summaryRows(summary) {
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+2), row[0])
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+2), row[1])
	}

	for i, h := range eventHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(eventsSheet, cell, h)
	}
	for i, ev := range summary.Events {
		row := i + 2
		f.SetCellValue(eventsSheet, fmt.Sprintf("A%d", row), ev.Event)
		f.SetCellValue(eventsSheet, fmt.Sprintf("B%d", row), ev.Date)
		f.SetCellValue(eventsSheet, fmt.Sprintf("C%d", row), ev.Strength)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *summaryExporter) exportPDF(club string, summary ClubSummary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, tr(club+" - Club Summary"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	for _, row := range summaryRows(summary)[1:] {
		pdf.CellFormat(60, 8, tr(row[0]), "1", 0, "L", false, 0, "")
		pdf.MultiCell(0, 8, tr(row[1]), "1", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 11)
	widths := []float64{90, 50, 40}
	for i, h := range eventHeaders {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, ev := range summary.Events {
		pdf.CellFormat(widths[0], 8, tr(ev.Event), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, tr(ev.Date), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 8, tr(ev.Strength), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fileSafe(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "club"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
