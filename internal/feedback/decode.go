package feedback

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeReports decodes the report list returned by the store. Elements that
// are not report objects are skipped; an empty or null body is an empty list.
func DecodeReports(data []byte) ([]EventReport, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []EventReport{}, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}

	reports := make([]EventReport, 0, len(raws))
	for _, raw := range raws {
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			continue
		}
		var r EventReport
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		if r.TopFeedback.Positive == nil {
			r.TopFeedback.Positive = []string{}
		}
		if r.TopFeedback.Negative == nil {
			r.TopFeedback.Negative = []string{}
		}
		reports = append(reports, r)
	}

	return reports, nil
}

// DecodeAnalysis decodes a structured analysis response. A body carrying an
// "error" member is reported as an error, as the backend answers failures that
// way with a success status.
func DecodeAnalysis(data []byte) (*AnalysisResult, error) {
	var envelope struct {
		Error *string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if envelope.Error != nil {
		return nil, fmt.Errorf("analysis failed: %s", *envelope.Error)
	}

	var result AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if result.PDFPath == "" {
		return nil, fmt.Errorf("decode analysis: response has no pdfPath")
	}
	return &result, nil
}
