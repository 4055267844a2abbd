// Package screens holds the per-screen controllers of the feedback client.
// Controllers own their state, change it only through their methods and
// report side effects through the injected collaborators declared here.
package screens

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"eventfeedback/internal/backend"
	"eventfeedback/internal/feedback"
)

// ReportLister fetches the stored reports of a club.
type ReportLister interface {
	ListReports(ctx context.Context, club string) ([]feedback.EventReport, error)
}

// ReportStore is the report list/delete collaborator used by the reports screen.
type ReportStore interface {
	ReportLister
	DeleteReport(ctx context.Context, pdfPath string) error
	ArtifactURL(pdfPath string) string
}

// Analyzer submits uploads and retrieves generated documents.
type Analyzer interface {
	Analyze(ctx context.Context, upload feedback.UploadRequest) (*backend.AnalyzeResponse, error)
	LatestSummary(ctx context.Context) ([]byte, error)
	ArtifactURL(pdfPath string) string
}

// ArtifactSink makes a downloaded document available to the user and returns
// where it was stored.
type ArtifactSink interface {
	Save(name string, data []byte) (string, error)
}

// Level classifies a user-visible notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notification is a non-fatal message for the user.
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier surfaces notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// Inbox collects notifications until the shell drains them.
type Inbox struct {
	mu    sync.Mutex
	items []Notification
}

// Notify appends n.
func (b *Inbox) Notify(n Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, n)
}

// Drain returns and clears the pending notifications.
func (b *Inbox) Drain() []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.items
	b.items = nil
	return out
}

// LogNotifier forwards notifications to a logger and then to Next, if any.
type LogNotifier struct {
	Logger *slog.Logger
	Next   Notifier
}

// Notify logs n at the matching level.
func (l LogNotifier) Notify(n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch n.Level {
	case LevelError:
		logger.Error("notification", slog.String("message", n.Message))
	case LevelWarn:
		logger.Warn("notification", slog.String("message", n.Message))
	default:
		logger.Info("notification", slog.String("message", n.Message))
	}
	if l.Next != nil {
		l.Next.Notify(n)
	}
}

// Confirmer asks the user to approve an irreversible action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

type confirmationKey struct{}

// WithConfirmation marks ctx as carrying the user's explicit approval.
func WithConfirmation(ctx context.Context) context.Context {
	return context.WithValue(ctx, confirmationKey{}, true)
}

// ContextConfirmer approves only actions whose context was built with
// WithConfirmation. The shell uses it to map a confirm flag on the request.
type ContextConfirmer struct{}

// Confirm reports whether ctx carries approval.
func (ContextConfirmer) Confirm(ctx context.Context, _ string) bool {
	ok, _ := ctx.Value(confirmationKey{}).(bool)
	return ok
}

// Route names a screen of the client.
type Route string

const (
	RouteClubs     Route = "clubs"
	RouteDashboard Route = "dashboard"
	RouteReports   Route = "reports"
	RouteUpload    Route = "upload"
	RouteAnalysis  Route = "analysis"
)

// Nav is a navigation command returned by a controller and executed by the
// hosting shell.
type Nav struct {
	Route Route  `json:"route"`
	Club  string `json:"club,omitempty"`
}

// Path renders the command as a shell path.
func (n Nav) Path() string {
	switch n.Route {
	case RouteDashboard, RouteReports:
		return "/" + string(n.Route) + "/" + url.PathEscape(n.Club)
	case RouteUpload:
		return "/upload"
	case RouteAnalysis:
		return "/analysis"
	default:
		return "/clubs"
	}
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

func notifierOrDiscard(n Notifier) Notifier {
	if n == nil {
		return discard{}
	}
	return n
}

type discard struct{}

func (discard) Notify(Notification) {}
