package screens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"eventfeedback/internal/feedback"
)

var (
	// ErrUnknownReport is returned when a pdfPath is not in the current set.
	ErrUnknownReport = errors.New("screens: unknown report")
	// ErrNotConfirmed is returned when the user declined a delete.
	ErrNotConfirmed = errors.New("screens: delete not confirmed")
	// ErrDeleteInFlight is returned for a second delete of the same report.
	ErrDeleteInFlight = errors.New("screens: delete already in progress")
)

// Viewer holds the links used to embed and download the selected report.
type Viewer struct {
	Report   feedback.EventReport `json:"report"`
	EmbedURL string               `json:"embed_url"`
	Download string               `json:"download_url"`
}

// ReportsView is the reports screen: the list, or the viewer when a report is selected.
type ReportsView struct {
	Club      string                 `json:"club"`
	Loading   bool                   `json:"loading"`
	Reports   []feedback.EventReport `json:"reports"`
	Selected  *Viewer                `json:"selected,omitempty"`
	Deleting  []string               `json:"deleting,omitempty"`
	Dashboard Nav                    `json:"dashboard"`
}

// Reports manages the stored report set of the active club.
type Reports struct {
	store   ReportStore
	confirm Confirmer
	notify  Notifier
	log     *slog.Logger

	mu       sync.Mutex
	active   activeClub
	loading  bool
	reports  []feedback.EventReport
	selected string
	deleting map[string]struct{}
}

// NewReports constructs the reports controller. A nil confirmer declines every delete.
func NewReports(store ReportStore, confirm Confirmer, notifier Notifier, logger *slog.Logger) *Reports {
	if confirm == nil {
		confirm = ConfirmFunc(func(context.Context, string) bool { return false })
	}
	return &Reports{
		store:    store,
		confirm:  confirm,
		notify:   notifierOrDiscard(notifier),
		log:      loggerOrDefault(logger),
		reports:  []feedback.EventReport{},
		deleting: make(map[string]struct{}),
	}
}

// Open makes club active and loads its reports.
func (r *Reports) Open(ctx context.Context, club string) ReportsView {
	r.mu.Lock()
	t, changed := r.active.issue(club)
	if changed {
		r.reports = []feedback.EventReport{}
		r.selected = ""
	}
	r.loading = true
	r.mu.Unlock()

	reports, err := r.store.ListReports(ctx, club)

	r.mu.Lock()
	defer r.mu.Unlock()
	applies := r.active.finish(t)
	r.loading = r.active.loading()
	if !applies {
		r.log.Debug("discarding stale report fetch",
			slog.String("club", t.club),
			slog.String("active", r.active.club),
			slog.String("ticket", t.id))
		return r.viewLocked()
	}
	if err != nil {
		r.log.Error("load reports", slog.String("club", club), slog.String("error", err.Error()))
		r.notify.Notify(Notification{Level: LevelError, Message: "Could not load reports for " + club + "."})
		r.reports = []feedback.EventReport{}
		return r.viewLocked()
	}
	r.reports = feedback.Dedupe(reports)
	if r.selected != "" {
		if _, ok := feedback.Find(r.reports, r.selected); !ok {
			r.log.Debug("selected report no longer listed", slog.String("pdf_path", r.selected))
		}
	}
	return r.viewLocked()
}

// View returns a snapshot of the screen.
func (r *Reports) View() ReportsView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

// Select shows the report with pdfPath, replacing any prior selection.
func (r *Reports) Select(pdfPath string) (Viewer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	report, ok := feedback.Find(r.reports, pdfPath)
	if !ok {
		return Viewer{}, fmt.Errorf("%w: %s", ErrUnknownReport, pdfPath)
	}
	r.selected = pdfPath
	return r.viewer(report), nil
}

// ClearSelection returns to the list view.
func (r *Reports) ClearSelection() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = ""
}

// Selected returns the pdfPath of the selected report.
func (r *Reports) Selected() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected, r.selected != ""
}

// CanDelete reports whether the delete control for pdfPath is enabled.
func (r *Reports) CanDelete(pdfPath string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.deleting[pdfPath]; busy {
		return false
	}
	_, ok := feedback.Find(r.reports, pdfPath)
	return ok
}

// Delete asks for confirmation and removes the report on the backend. The
// local set changes only when the backend confirms the deletion.
func (r *Reports) Delete(ctx context.Context, pdfPath string) error {
	r.mu.Lock()
	_, busy := r.deleting[pdfPath]
	r.mu.Unlock()
	if busy {
		return ErrDeleteInFlight
	}

	if !r.confirm.Confirm(ctx, "Delete report "+pdfPath+"?") {
		r.log.Debug("delete declined", slog.String("pdf_path", pdfPath))
		return ErrNotConfirmed
	}

	r.mu.Lock()
	if _, busy := r.deleting[pdfPath]; busy {
		r.mu.Unlock()
		return ErrDeleteInFlight
	}
	r.deleting[pdfPath] = struct{}{}
	r.mu.Unlock()

	err := r.store.DeleteReport(ctx, pdfPath)

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.deleting, pdfPath)

	if err != nil {
		r.log.Error("delete report", slog.String("pdf_path", pdfPath), slog.String("error", err.Error()))
		r.notify.Notify(Notification{Level: LevelError, Message: "Failed to delete report."})
		return fmt.Errorf("delete %s: %w", pdfPath, err)
	}

	r.reports = feedback.Without(r.reports, pdfPath)
	r.active.invalidate()
	if r.selected == pdfPath {
		r.selected = ""
	}
	r.log.Info("report deleted", slog.String("club", r.active.club), slog.String("pdf_path", pdfPath))
	r.notify.Notify(Notification{Level: LevelInfo, Message: "Report deleted."})
	return nil
}

func (r *Reports) viewLocked() ReportsView {
	v := ReportsView{
		Club:      r.active.club,
		Loading:   r.loading,
		Reports:   append([]feedback.EventReport(nil), r.reports...),
		Dashboard: Nav{Route: RouteDashboard, Club: r.active.club},
	}
	if v.Reports == nil {
		v.Reports = []feedback.EventReport{}
	}
	if r.selected != "" {
		if report, ok := feedback.Find(r.reports, r.selected); ok {
			viewer := r.viewer(report)
			v.Selected = &viewer
		}
	}
	for p := range r.deleting {
		v.Deleting = append(v.Deleting, p)
	}
	sort.Strings(v.Deleting)
	return v
}

func (r *Reports) viewer(report feedback.EventReport) Viewer {
	link := r.store.ArtifactURL(report.PDFPath)
	return Viewer{Report: report, EmbedURL: link, Download: link}
}
