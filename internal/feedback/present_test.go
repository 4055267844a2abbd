package feedback

import (
	"reflect"
	"testing"
)

func TestPresentNilResult(t *testing.T) {
	view := Present(nil, ViewMeta{Event: "Expo", Club: "CSEA"})
	if view.Available {
		t.Fatalf("expected unavailable view")
	}
	if view.Message != "No analysis data found." {
		t.Errorf("unexpected message %q", view.Message)
	}
}

func TestPresentFullResult(t *testing.T) {
	score := 87.5
	result := &AnalysisResult{
		SentimentCounts: &SentimentCounts{Positive: 5, Neutral: 2, Negative: 1},
		Summary:         "Total feedback entries: 8\n\nPositive: 5",
		PieChart:        "iVBORw0KGgo=",
		WordCloud:       "not even base64 %%%",
		TrendingTopics:  []string{"food", "venue"},
		SampleFeedback:  []string{"1", "2", "3", "4", "5", "6", "7"},
		EngagementScore: &score,
		PDFPath:         "expo.pdf",
	}

	view := Present(result, ViewMeta{Event: "Expo", Club: "CSEA", DownloadLink: "http://localhost:8000/reports/expo.pdf"})

	if !view.Available || view.Title != "Expo — CSEA Analysis" {
		t.Fatalf("unexpected header: %+v", view)
	}
	wantSentiment := []SentimentCell{{"Positive", 5}, {"Neutral", 2}, {"Negative", 1}}
	if !reflect.DeepEqual(view.Sentiment, wantSentiment) {
		t.Errorf("unexpected sentiment section: %+v", view.Sentiment)
	}
	if !reflect.DeepEqual(view.Paragraphs, []string{"Total feedback entries: 8", "", "Positive: 5"}) {
		t.Errorf("unexpected paragraphs: %q", view.Paragraphs)
	}
	if !view.PieChart.Present || !view.WordCloud.Present || view.WordCloud.Payload != result.WordCloud {
		t.Errorf("expected opaque images to be passed through")
	}
	if view.PositiveKeywords.Present || view.PositiveKeywords.Placeholder != "None" {
		t.Errorf("expected placeholder for missing keyword image, got %+v", view.PositiveKeywords)
	}
	if len(view.SampleFeedback.Items) != 5 {
		t.Errorf("expected sample feedback capped at 5, got %d", len(view.SampleFeedback.Items))
	}
	if view.Engagement == nil || view.Engagement.Display != "87.5%" {
		t.Errorf("unexpected engagement block: %+v", view.Engagement)
	}
	if view.DownloadLink == "" {
		t.Errorf("expected download link")
	}
}

func TestPresentOmitsAbsentSections(t *testing.T) {
	view := Present(&AnalysisResult{Summary: "only text"}, ViewMeta{})

	if view.Sentiment != nil {
		t.Errorf("sentiment section must be omitted, got %+v", view.Sentiment)
	}
	if view.Engagement != nil {
		t.Errorf("engagement block must be omitted, got %+v", view.Engagement)
	}
	if view.TrendingTopics.Empty != "No trending topics found." {
		t.Errorf("unexpected trending empty state %q", view.TrendingTopics.Empty)
	}
	if view.SampleFeedback.Empty != "No feedback samples available." {
		t.Errorf("unexpected sample empty state %q", view.SampleFeedback.Empty)
	}
}

func TestPresentZeroEngagementIsShown(t *testing.T) {
	zero := 0.0
	view := Present(&AnalysisResult{EngagementScore: &zero}, ViewMeta{})
	if view.Engagement == nil || view.Engagement.Display != "0%" {
		t.Fatalf("expected explicit zero score, got %+v", view.Engagement)
	}
}
