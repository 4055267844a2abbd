package screens

import (
	"context"
	"errors"
	"sync"

	"eventfeedback/internal/backend"
	"eventfeedback/internal/feedback"
)

type fakeStore struct {
	mu        sync.Mutex
	reports   map[string][]feedback.EventReport
	listErr   error
	deleteErr error
	// gates block ListReports for a club until closed; started is signalled on entry.
	gates   map[string]chan struct{}
	started chan string
	// callGates and callReports override gating and data for the n-th ListReports call (1-based).
	callGates   map[int]chan struct{}
	callReports map[int][]feedback.EventReport

	listCalls   int
	deleteCalls []string
	deleteGate  chan struct{}
}

func (f *fakeStore) ListReports(ctx context.Context, club string) ([]feedback.EventReport, error) {
	f.mu.Lock()
	f.listCalls++
	n := f.listCalls
	gate := f.gates[club]
	reports := append([]feedback.EventReport(nil), f.reports[club]...)
	if g, ok := f.callGates[n]; ok {
		gate = g
	}
	if r, ok := f.callReports[n]; ok {
		reports = append([]feedback.EventReport(nil), r...)
	}
	err := f.listErr
	f.mu.Unlock()

	if f.started != nil {
		f.started <- club
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (f *fakeStore) DeleteReport(ctx context.Context, pdfPath string) error {
	f.mu.Lock()
	f.deleteCalls = append(f.deleteCalls, pdfPath)
	gate := f.deleteGate
	err := f.deleteErr
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeStore) deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleteCalls...)
}

func (f *fakeStore) ArtifactURL(pdfPath string) string {
	return "http://backend/reports/" + pdfPath
}

type fakeAnalyzer struct {
	mu       sync.Mutex
	resp     *backend.AnalyzeResponse
	err      error
	latest   []byte
	latestEr error
	gate     chan struct{}
	started  chan struct{}

	calls []feedback.UploadRequest
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, upload feedback.UploadRequest) (*backend.AnalyzeResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, upload)
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeAnalyzer) LatestSummary(ctx context.Context) ([]byte, error) {
	if f.latestEr != nil {
		return nil, f.latestEr
	}
	return f.latest, nil
}

func (f *fakeAnalyzer) ArtifactURL(pdfPath string) string {
	return "http://backend/reports/" + pdfPath
}

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSink struct {
	saved map[string][]byte
	err   error
}

func (s *fakeSink) Save(name string, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	s.saved[name] = data
	return "downloads/" + name, nil
}

var errBackendDown = errors.New("backend: connection refused")

func report(pdf string, strength string, pos, neu, neg int) feedback.EventReport {
	return feedback.EventReport{
		Event:           pdf,
		Strength:        feedback.Strength(strength),
		SentimentCounts: feedback.SentimentCounts{Positive: pos, Neutral: neu, Negative: neg},
		TopFeedback:     feedback.TopFeedback{Positive: []string{}, Negative: []string{}},
		PDFPath:         pdf,
	}
}

func pdfPaths(reports []feedback.EventReport) []string {
	out := make([]string, 0, len(reports))
	for _, r := range reports {
		out = append(out, r.PDFPath)
	}
	return out
}

func levels(items []Notification) []Level {
	out := make([]Level, 0, len(items))
	for _, n := range items {
		out = append(out, n.Level)
	}
	return out
}
