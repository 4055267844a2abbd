package screens

import (
	"context"
	"log/slog"
	"sync"

	"eventfeedback/internal/feedback"
)

// DashboardView is the club dashboard as rendered by the shell.
type DashboardView struct {
	Club    string               `json:"club"`
	Loading bool                 `json:"loading"`
	Summary feedback.ClubSummary `json:"summary"`
	Upload  Nav                  `json:"upload"`
	Reports Nav                  `json:"reports"`
}

// Dashboard aggregates the active club's reports into a ClubSummary.
type Dashboard struct {
	store  ReportLister
	notify Notifier
	log    *slog.Logger

	mu      sync.Mutex
	active  activeClub
	loading bool
	summary feedback.ClubSummary
}

// NewDashboard constructs a dashboard controller.
func NewDashboard(store ReportLister, notifier Notifier, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		store:   store,
		notify:  notifierOrDiscard(notifier),
		log:     loggerOrDefault(logger),
		summary: feedback.Aggregate(nil),
	}
}

// Open makes club the active club and loads its summary. When the user has
// navigated elsewhere before the fetch completes, the response is discarded
// and the view of the newer club is returned.
func (d *Dashboard) Open(ctx context.Context, club string) DashboardView {
	t := d.begin(club)
	reports, err := d.store.ListReports(ctx, club)
	d.complete(t, reports, err)
	return d.View()
}

// Refresh reloads the active club, if any.
func (d *Dashboard) Refresh(ctx context.Context) (DashboardView, bool) {
	club := d.ActiveClub()
	if club == "" {
		return DashboardView{}, false
	}
	return d.Open(ctx, club), true
}

// ActiveClub returns the club currently shown.
func (d *Dashboard) ActiveClub() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active.club
}

// View returns a snapshot of the dashboard.
func (d *Dashboard) View() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DashboardView{
		Club:    d.active.club,
		Loading: d.loading,
		Summary: d.summary,
		Upload:  Nav{Route: RouteUpload, Club: d.active.club},
		Reports: Nav{Route: RouteReports, Club: d.active.club},
	}
}

func (d *Dashboard) begin(club string) fetchTicket {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, changed := d.active.issue(club)
	if changed {
		d.summary = feedback.Aggregate(nil)
	}
	d.loading = true
	return t
}

func (d *Dashboard) complete(t fetchTicket, reports []feedback.EventReport, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	applies := d.active.finish(t)
	d.loading = d.active.loading()
	if !applies {
		d.log.Debug("discarding stale dashboard fetch",
			slog.String("club", t.club),
			slog.String("active", d.active.club),
			slog.String("ticket", t.id))
		return
	}

	if err != nil {
		d.log.Error("load dashboard", slog.String("club", t.club), slog.String("error", err.Error()))
		d.notify.Notify(Notification{Level: LevelError, Message: "Could not load reports for " + t.club + "."})
		d.summary = feedback.Aggregate(nil)
		return
	}

	d.summary = feedback.Aggregate(feedback.Dedupe(reports))
	d.log.Info("dashboard loaded",
		slog.String("club", t.club),
		slog.Int("events", len(d.summary.Events)),
		slog.Int("participation", d.summary.TotalParticipation))
}
