package feedback

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// TopFeedbackLimit caps the club-wide positive and negative feedback lists.
const TopFeedbackLimit = 5

// SentimentCounts is the tri-valued tally produced by the analysis backend.
type SentimentCounts struct {
	Positive int `json:"Positive"`
	Neutral  int `json:"Neutral"`
	Negative int `json:"Negative"`
}

// Add returns the field-wise sum of both tallies.
func (c SentimentCounts) Add(o SentimentCounts) SentimentCounts {
	return SentimentCounts{
		Positive: c.Positive + o.Positive,
		Neutral:  c.Neutral + o.Neutral,
		Negative: c.Negative + o.Negative,
	}
}

// Total returns the number of classified feedback items.
func (c SentimentCounts) Total() int {
	return c.Positive + c.Neutral + c.Negative
}

// TopFeedback holds representative feedback lines per polarity.
type TopFeedback struct {
	Positive []string `json:"Positive"`
	Negative []string `json:"Negative"`
}

// Strength is a participation count as sent by the backend. It arrives either
// as a JSON number or as a string typed into the upload form.
type Strength string

// UnmarshalJSON accepts numbers, strings and null.
func (s *Strength) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Strength(str)
		return nil
	}
	*s = Strength(data)
	return nil
}

// Int parses the leading integer of the value, mirroring how a participation
// figure like "250 students" is still counted. Anything unparsable is 0.
func (s Strength) Int() int {
	str := strings.TrimSpace(string(s))
	end := 0
	for end < len(str) {
		ch := str[end]
		if ch >= '0' && ch <= '9' || (end == 0 && (ch == '-' || ch == '+')) {
			end++
			continue
		}
		break
	}
	n, err := strconv.Atoi(str[:end])
	if err != nil {
		return 0
	}
	return n
}

// EventReport is one completed event's stored analysis summary. PDFPath is the
// identity of the generated artifact.
type EventReport struct {
	Event           string          `json:"event"`
	Club            string          `json:"club"`
	Date            string          `json:"date"`
	Strength        Strength        `json:"strength"`
	SentimentCounts SentimentCounts `json:"sentiment_counts"`
	TopFeedback     TopFeedback     `json:"top_feedback"`
	PDFPath         string          `json:"pdf_path"`
}

// EventRow is the per-event line shown on the club dashboard.
type EventRow struct {
	Event    string `json:"event"`
	Date     string `json:"date"`
	Strength string `json:"strength"`
}

// ClubSummary aggregates every EventReport of a club.
type ClubSummary struct {
	SentimentTotals    SentimentCounts `json:"sentiment_totals"`
	TotalParticipation int             `json:"total_participation"`
	TopPositive        []string        `json:"top_positive"`
	TopNegative        []string        `json:"top_negative"`
	Events             []EventRow      `json:"events"`
}

// AnalysisResult is the rich single-event payload returned by the analysis
// endpoint when it answers with JSON. Encoded images are opaque.
type AnalysisResult struct {
	SentimentCounts  *SentimentCounts `json:"sentimentCounts,omitempty"`
	Summary          string           `json:"summary"`
	PieChart         string           `json:"pieChart,omitempty"`
	WordCloud        string           `json:"wordCloud,omitempty"`
	PositiveKeywords string           `json:"positiveKeywords,omitempty"`
	NegativeKeywords string           `json:"negativeKeywords,omitempty"`
	TrendingTopics   []string         `json:"trendingTopics,omitempty"`
	SampleFeedback   []string         `json:"sampleFeedback,omitempty"`
	EngagementScore  *float64         `json:"engagementScore,omitempty"`
	PDFPath          string           `json:"pdfPath,omitempty"`
}

// UploadFile is the feedback file chosen in the upload form.
type UploadFile struct {
	Name string
	Data []byte
}

// UploadRequest carries the six mandatory fields of a new event upload.
type UploadRequest struct {
	EventName   string
	Club        string
	Description string
	Date        string
	Strength    string
	File        *UploadFile
}
