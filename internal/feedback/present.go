package feedback

import (
	"strconv"
	"strings"
)

const (
	sampleFeedbackLimit = 5

	msgNoAnalysis       = "No analysis data found."
	msgNoTrending       = "No trending topics found."
	msgNoSampleFeedback = "No feedback samples available."
	imageNone           = "None"
)

// ViewMeta is the navigation context that accompanies an analysis result.
type ViewMeta struct {
	Event        string
	Club         string
	DownloadLink string
}

// SentimentCell is one counter of the sentiment section.
type SentimentCell struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ImageSection is an optional encoded chart. Placeholder is set when absent.
type ImageSection struct {
	Title       string `json:"title"`
	Present     bool   `json:"present"`
	Payload     string `json:"payload,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// ListSection renders as an ordered list or, when empty, as Empty.
type ListSection struct {
	Items []string `json:"items,omitempty"`
	Empty string   `json:"empty,omitempty"`
}

// EngagementBlock is shown only when the backend scored the event.
type EngagementBlock struct {
	Score   float64 `json:"score"`
	Display string  `json:"display"`
}

// AnalysisView is the display-ready form of an AnalysisResult.
type AnalysisView struct {
	Available        bool             `json:"available"`
	Message          string           `json:"message,omitempty"`
	Title            string           `json:"title,omitempty"`
	Sentiment        []SentimentCell  `json:"sentiment,omitempty"`
	Paragraphs       []string         `json:"paragraphs,omitempty"`
	PieChart         ImageSection     `json:"pie_chart"`
	WordCloud        ImageSection     `json:"word_cloud"`
	PositiveKeywords ImageSection     `json:"positive_keywords"`
	NegativeKeywords ImageSection     `json:"negative_keywords"`
	TrendingTopics   ListSection      `json:"trending_topics"`
	SampleFeedback   ListSection      `json:"sample_feedback"`
	Engagement       *EngagementBlock `json:"engagement,omitempty"`
	DownloadLink     string           `json:"download_link,omitempty"`
}

// Present maps an analysis result to its view. Missing fields degrade to
// omitted sections or placeholders; a nil result yields the empty state.
func Present(result *AnalysisResult, meta ViewMeta) AnalysisView {
	if result == nil {
		return AnalysisView{Available: false, Message: msgNoAnalysis}
	}

	view := AnalysisView{
		Available:        true,
		Title:            meta.Event + " — " + meta.Club + " Analysis",
		Paragraphs:       strings.Split(result.Summary, "\n"),
		PieChart:         image("Sentiment Distribution", result.PieChart),
		WordCloud:        image("Word Cloud", result.WordCloud),
		PositiveKeywords: image("Positive", result.PositiveKeywords),
		NegativeKeywords: image("Negative", result.NegativeKeywords),
		TrendingTopics:   list(result.TrendingTopics, 0, msgNoTrending),
		SampleFeedback:   list(result.SampleFeedback, sampleFeedbackLimit, msgNoSampleFeedback),
		DownloadLink:     meta.DownloadLink,
	}

	if c := result.SentimentCounts; c != nil {
		view.Sentiment = []SentimentCell{
			{Label: "Positive", Count: c.Positive},
			{Label: "Neutral", Count: c.Neutral},
			{Label: "Negative", Count: c.Negative},
		}
	}

	if result.EngagementScore != nil {
		score := *result.EngagementScore
		view.Engagement = &EngagementBlock{
			Score:   score,
			Display: strconv.FormatFloat(score, 'f', -1, 64) + "%",
		}
	}

	return view
}

func image(title, payload string) ImageSection {
	if payload == "" {
		return ImageSection{Title: title, Placeholder: imageNone}
	}
	return ImageSection{Title: title, Present: true, Payload: payload}
}

func list(items []string, limit int, empty string) ListSection {
	if len(items) == 0 {
		return ListSection{Empty: empty}
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return ListSection{Items: append([]string(nil), items...)}
}
