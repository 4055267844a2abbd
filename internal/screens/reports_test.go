package screens

import (
	"context"
	"errors"
	"reflect"
	"runtime"
	"testing"

	"eventfeedback/internal/feedback"
)

func confirmAll() Confirmer {
	return ConfirmFunc(func(context.Context, string) bool { return true })
}

func TestReportsOpenDedupes(t *testing.T) {
	store := &fakeStore{reports: map[string][]feedback.EventReport{
		"IEEE": {report("r1.pdf", "1", 0, 0, 0), report("r1.pdf", "2", 0, 0, 0)},
	}}
	r := NewReports(store, nil, nil, nil)

	view := r.Open(context.Background(), "IEEE")
	if len(view.Reports) != 1 || view.Reports[0].Strength != "1" {
		t.Fatalf("expected first occurrence only, got %+v", view.Reports)
	}
	if view.Dashboard.Path() != "/dashboard/IEEE" {
		t.Errorf("unexpected back navigation %q", view.Dashboard.Path())
	}
}

func TestReportsSelectionSurvivesRefetch(t *testing.T) {
	store := &fakeStore{reports: map[string][]feedback.EventReport{
		"CSI": {report("a.pdf", "1", 0, 0, 0), report("b.pdf", "1", 0, 0, 0)},
	}}
	r := NewReports(store, nil, nil, nil)
	r.Open(context.Background(), "CSI")

	viewer, err := r.Select("b.pdf")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if viewer.EmbedURL != "http://backend/reports/b.pdf" || viewer.Download != viewer.EmbedURL {
		t.Errorf("unexpected viewer %+v", viewer)
	}

	view := r.Open(context.Background(), "CSI")
	if view.Selected == nil || view.Selected.Report.PDFPath != "b.pdf" {
		t.Fatalf("expected selection kept, got %+v", view.Selected)
	}

	if _, err := r.Select("missing.pdf"); !errors.Is(err, ErrUnknownReport) {
		t.Errorf("expected ErrUnknownReport, got %v", err)
	}
	r.ClearSelection()
	if _, ok := r.Selected(); ok {
		t.Errorf("expected selection cleared")
	}
}

func TestReportsDeleteDeclinedSendsNothing(t *testing.T) {
	store := &fakeStore{reports: map[string][]feedback.EventReport{"CSI": {report("a.pdf", "1", 0, 0, 0)}}}
	r := NewReports(store, ConfirmFunc(func(context.Context, string) bool { return false }), nil, nil)
	r.Open(context.Background(), "CSI")

	if err := r.Delete(context.Background(), "a.pdf"); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if len(store.deleteCalls) != 0 {
		t.Fatalf("expected no delete request, got %v", store.deleteCalls)
	}
}

func TestReportsDeleteSuccessRemovesOnlyMatch(t *testing.T) {
	store := &fakeStore{reports: map[string][]feedback.EventReport{
		"CSEA": {report("r1.pdf", "1", 0, 0, 0), report("r2.pdf", "1", 0, 0, 0), report("r3.pdf", "1", 0, 0, 0)},
	}}
	inbox := &Inbox{}
	r := NewReports(store, confirmAll(), inbox, nil)
	r.Open(context.Background(), "CSEA")
	if _, err := r.Select("r2.pdf"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	if err := r.Delete(context.Background(), "r2.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	view := r.View()
	var got []string
	for _, rep := range view.Reports {
		got = append(got, rep.PDFPath)
	}
	if !reflect.DeepEqual(got, []string{"r1.pdf", "r3.pdf"}) {
		t.Errorf("unexpected remaining reports %v", got)
	}
	if view.Selected != nil {
		t.Errorf("expected selection cleared after deleting it")
	}
	if lv := levels(inbox.Drain()); len(lv) != 1 || lv[0] != LevelInfo {
		t.Errorf("expected one info notification, got %v", lv)
	}
}

func TestReportsDeleteFailureKeepsList(t *testing.T) {
	store := &fakeStore{
		reports:   map[string][]feedback.EventReport{"CSEA": {report("r1.pdf", "1", 0, 0, 0), report("r2.pdf", "1", 0, 0, 0)}},
		deleteErr: errBackendDown,
	}
	inbox := &Inbox{}
	r := NewReports(store, confirmAll(), inbox, nil)
	before := r.Open(context.Background(), "CSEA").Reports

	if err := r.Delete(context.Background(), "r2.pdf"); err == nil {
		t.Fatalf("expected delete failure")
	}

	after := r.View().Reports
	if !reflect.DeepEqual(before, after) {
		t.Errorf("list changed after failed delete:\nbefore %+v\nafter  %+v", before, after)
	}
	if lv := levels(inbox.Drain()); len(lv) != 1 || lv[0] != LevelError {
		t.Errorf("expected one error notification, got %v", lv)
	}
	if !r.CanDelete("r2.pdf") {
		t.Errorf("expected delete control enabled again")
	}
}

func TestReportsSecondDeleteRefusedWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeStore{
		reports:    map[string][]feedback.EventReport{"CSEA": {report("r1.pdf", "1", 0, 0, 0)}},
		deleteGate: gate,
	}
	started := make(chan struct{}, 1)
	confirm := ConfirmFunc(func(context.Context, string) bool { return true })
	r := NewReports(store, confirm, nil, nil)
	r.Open(context.Background(), "CSEA")

	done := make(chan error)
	go func() {
		started <- struct{}{}
		done <- r.Delete(context.Background(), "r1.pdf")
	}()
	<-started
	for r.CanDelete("r1.pdf") {
		runtime.Gosched()
	}

	if err := r.Delete(context.Background(), "r1.pdf"); !errors.Is(err, ErrDeleteInFlight) {
		t.Fatalf("expected ErrDeleteInFlight, got %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if len(store.deleteCalls) != 1 {
		t.Errorf("expected exactly one delete request, got %v", store.deleteCalls)
	}
}

func TestReportsClubSwitchClearsSelection(t *testing.T) {
	store := &fakeStore{reports: map[string][]feedback.EventReport{
		"A": {report("a.pdf", "1", 0, 0, 0)},
		"B": {report("b.pdf", "1", 0, 0, 0)},
	}}
	r := NewReports(store, nil, nil, nil)
	r.Open(context.Background(), "A")
	if _, err := r.Select("a.pdf"); err != nil {
		t.Fatalf("Select: %v", err)
	}

	view := r.Open(context.Background(), "B")
	if view.Selected != nil {
		t.Fatalf("expected selection reset for new club, got %+v", view.Selected)
	}
	if len(view.Reports) != 1 || view.Reports[0].PDFPath != "b.pdf" {
		t.Errorf("unexpected reports %+v", view.Reports)
	}
}

func TestReportsStaleFetchDoesNotOverwriteNewerClub(t *testing.T) {
	gateA := make(chan struct{})
	store := &fakeStore{
		reports: map[string][]feedback.EventReport{
			"A": {report("a.pdf", "1", 0, 0, 0)},
			"B": {report("b.pdf", "1", 0, 0, 0)},
		},
		gates:   map[string]chan struct{}{"A": gateA},
		started: make(chan string, 2),
	}
	r := NewReports(store, nil, nil, nil)

	done := make(chan ReportsView)
	go func() { done <- r.Open(context.Background(), "A") }()
	if club := <-store.started; club != "A" {
		t.Fatalf("expected fetch for A first, got %s", club)
	}

	r.Open(context.Background(), "B")
	<-store.started
	close(gateA)
	<-done

	final := r.View()
	if final.Club != "B" {
		t.Fatalf("late completion switched club to %q", final.Club)
	}
	if got := pdfPaths(final.Reports); !reflect.DeepEqual(got, []string{"b.pdf"}) {
		t.Errorf("stale fetch overwrote B: %v", got)
	}
}

func TestReportsOlderFetchForSameClubIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeStore{
		callGates: map[int]chan struct{}{1: gate},
		callReports: map[int][]feedback.EventReport{
			1: {report("a.pdf", "1", 0, 0, 0), report("b.pdf", "1", 0, 0, 0)},
			2: {report("b.pdf", "1", 0, 0, 0)},
		},
		started: make(chan string, 2),
	}
	r := NewReports(store, nil, nil, nil)

	done := make(chan ReportsView)
	go func() { done <- r.Open(context.Background(), "CSEA") }()
	<-store.started
	r.Open(context.Background(), "CSEA")
	<-store.started
	close(gate)
	<-done

	if got := pdfPaths(r.View().Reports); !reflect.DeepEqual(got, []string{"b.pdf"}) {
		t.Errorf("older fetch overwrote newer list: %v", got)
	}
}

func TestReportsFetchIssuedBeforeDeleteDoesNotRestoreReport(t *testing.T) {
	gate := make(chan struct{})
	both := []feedback.EventReport{report("a.pdf", "1", 0, 0, 0), report("b.pdf", "1", 0, 0, 0)}
	store := &fakeStore{
		callGates:   map[int]chan struct{}{2: gate},
		callReports: map[int][]feedback.EventReport{1: both, 2: both},
		started:     make(chan string, 2),
	}
	r := NewReports(store, confirmAll(), nil, nil)
	r.Open(context.Background(), "CSEA")
	<-store.started

	done := make(chan ReportsView)
	go func() { done <- r.Open(context.Background(), "CSEA") }()
	<-store.started

	if err := r.Delete(context.Background(), "a.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	close(gate)
	<-done

	final := r.View()
	if got := pdfPaths(final.Reports); !reflect.DeepEqual(got, []string{"b.pdf"}) {
		t.Errorf("deleted report came back: %v", got)
	}
	if final.Loading {
		t.Errorf("expected loading cleared")
	}
}

func TestReportsDeletingListIsSorted(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeStore{
		reports:    map[string][]feedback.EventReport{"CSEA": {report("a.pdf", "1", 0, 0, 0), report("b.pdf", "1", 0, 0, 0), report("c.pdf", "1", 0, 0, 0)}},
		deleteGate: gate,
	}
	r := NewReports(store, confirmAll(), nil, nil)
	r.Open(context.Background(), "CSEA")

	done := make(chan error, 3)
	for _, p := range []string{"c.pdf", "a.pdf", "b.pdf"} {
		go func(p string) { done <- r.Delete(context.Background(), p) }(p)
	}
	for r.CanDelete("a.pdf") || r.CanDelete("b.pdf") || r.CanDelete("c.pdf") {
		runtime.Gosched()
	}

	want := []string{"a.pdf", "b.pdf", "c.pdf"}
	for i := 0; i < 5; i++ {
		if got := r.View().Deleting; !reflect.DeepEqual(got, want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	close(gate)
	for i := 0; i < 3; i++ {
		if err := <-done; err != nil {
			t.Fatalf("Delete: %v", err)
		}
	}
	if n := len(store.deletes()); n != 3 {
		t.Errorf("expected three delete requests, got %d", n)
	}
}
