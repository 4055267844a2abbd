package screens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"eventfeedback/internal/backend"
	"eventfeedback/internal/feedback"
)

const (
	// DefaultDownloadName is the file name generated documents are saved under.
	DefaultDownloadName = "sentiment_summary.pdf"

	msgIncomplete     = "Please complete all fields and upload the feedback file."
	msgBadExtension   = "Unsupported feedback file type."
	msgDownloaded     = "Feedback analyzed successfully. PDF downloaded."
	msgAnalyzed       = "Feedback analyzed successfully."
	msgUploadFailed   = "Failed to upload file. Please try again."
	msgNotReady       = "PDF not available yet."
	msgSaveFailed     = "Could not save the generated PDF."
	msgSubmitInFlight = "An upload is already in progress."
)

// Form field names, matching the multipart fields sent to the backend.
const (
	FieldEventName   = "eventName"
	FieldClub        = "club"
	FieldDescription = "description"
	FieldDate        = "date"
	FieldStrength    = "strength"
	FieldFile        = "file"
)

var allowedExtensions = map[string]struct{}{
	".csv":  {},
	".tsv":  {},
	".txt":  {},
	".xlsx": {},
	".xls":  {},
}

var (
	// ErrBusy is returned by Submit while a submission is outstanding.
	ErrBusy = errors.New("screens: upload already in progress")
	// ErrArtifactNotReady is returned by Latest when nothing was generated yet.
	ErrArtifactNotReady = errors.New("screens: artifact not available yet")
	// ErrUnknownField is returned by SetField for names outside the form.
	ErrUnknownField = errors.New("screens: unknown form field")
)

// ValidationError reports a form that cannot be submitted. No request is sent.
type ValidationError struct {
	Missing      []string
	BadExtension string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "validation: missing " + strings.Join(e.Missing, ", ")
	}
	return "validation: unsupported file extension " + e.BadExtension
}

// SubmitError reports a submission that reached the network and failed.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string { return "submit: " + e.Err.Error() }

func (e *SubmitError) Unwrap() error { return e.Err }

// UploadState is a step of the upload state machine.
type UploadState string

const (
	StateIdle       UploadState = "idle"
	StateValidating UploadState = "validating"
	StateSubmitting UploadState = "submitting"
	StateSuccess    UploadState = "success"
	StateFailure    UploadState = "failure"
)

// Outcome distinguishes the two successful response contracts.
type Outcome string

const (
	OutcomeDocument Outcome = "document"
	OutcomeAnalysis Outcome = "analysis"
)

// SubmitResult describes a successful submission.
type SubmitResult struct {
	Outcome      Outcome                `json:"outcome"`
	Attempt      string                 `json:"attempt"`
	SavedTo      string                 `json:"saved_to,omitempty"`
	Analysis     *feedback.AnalysisView `json:"analysis,omitempty"`
	DownloadLink string                 `json:"download_link,omitempty"`
	Next         *Nav                   `json:"next,omitempty"`
}

// UploadStatus is a snapshot of the upload screen.
type UploadStatus struct {
	State   UploadState   `json:"state"`
	Busy    bool          `json:"busy"`
	Fields  UploadFields  `json:"fields"`
	Result  *SubmitResult `json:"result,omitempty"`
	Message string        `json:"message,omitempty"`
}

// UploadFields is the form content without the file payload.
type UploadFields struct {
	EventName   string `json:"eventName"`
	Club        string `json:"club"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Strength    string `json:"strength"`
	FileName    string `json:"file,omitempty"`
}

// Download is a retrieved document.
type Download struct {
	Name    string
	SavedTo string
	Data    []byte
}

// Upload coordinates the upload form and its submission.
type Upload struct {
	analyzer     Analyzer
	sink         ArtifactSink
	notify       Notifier
	log          *slog.Logger
	downloadName string

	mu       sync.Mutex
	form     feedback.UploadRequest
	state    UploadState
	result   *SubmitResult
	analysis *feedback.AnalysisResult
	meta     feedback.ViewMeta
	message  string
}

// UploadOption customises an Upload.
type UploadOption func(*Upload)

// WithDownloadName overrides the name generated documents are saved under.
func WithDownloadName(name string) UploadOption {
	return func(u *Upload) {
		if name != "" {
			u.downloadName = name
		}
	}
}

// NewUpload constructs the upload controller.
func NewUpload(analyzer Analyzer, sink ArtifactSink, notifier Notifier, logger *slog.Logger, opts ...UploadOption) *Upload {
	u := &Upload{
		analyzer:     analyzer,
		sink:         sink,
		notify:       notifierOrDiscard(notifier),
		log:          loggerOrDefault(logger),
		downloadName: DefaultDownloadName,
		state:        StateIdle,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// SetField updates one text field of the form.
func (u *Upload) SetField(name, value string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	switch name {
	case FieldEventName:
		u.form.EventName = value
	case FieldClub:
		u.form.Club = value
	case FieldDescription:
		u.form.Description = value
	case FieldDate:
		u.form.Date = value
	case FieldStrength:
		u.form.Strength = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

// SetFile attaches the feedback file. A nil file clears it.
func (u *Upload) SetFile(file *feedback.UploadFile) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.form.File = file
}

// Form returns a copy of the current form.
func (u *Upload) Form() feedback.UploadRequest {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.form
}

// Validate checks req without touching any controller state.
func Validate(req feedback.UploadRequest) error {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{FieldEventName, req.EventName},
		{FieldClub, req.Club},
		{FieldDescription, req.Description},
		{FieldDate, req.Date},
		{FieldStrength, req.Strength},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if req.File == nil || req.File.Name == "" || len(req.File.Data) == 0 {
		missing = append(missing, FieldFile)
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}

	ext := strings.ToLower(filepath.Ext(req.File.Name))
	if _, ok := allowedExtensions[ext]; !ok {
		return &ValidationError{BadExtension: ext}
	}
	return nil
}

// Submit validates the form and sends it for analysis.
func (u *Upload) Submit(ctx context.Context) (*SubmitResult, error) {
	u.mu.Lock()
	if u.state == StateSubmitting {
		u.mu.Unlock()
		u.notify.Notify(Notification{Level: LevelWarn, Message: msgSubmitInFlight})
		return nil, ErrBusy
	}
	u.state = StateValidating
	u.analysis = nil
	u.meta = feedback.ViewMeta{}
	req := u.form
	if err := Validate(req); err != nil {
		u.state = StateFailure
		u.result = nil
		msg := msgIncomplete
		var verr *ValidationError
		if errors.As(err, &verr) && verr.BadExtension != "" {
			msg = msgBadExtension
		}
		u.message = msg
		u.mu.Unlock()
		u.notify.Notify(Notification{Level: LevelWarn, Message: msg})
		return nil, err
	}
	u.state = StateSubmitting
	u.result = nil
	u.message = ""
	u.mu.Unlock()

	attempt := uuid.NewString()
	logger := u.log.With(slog.String("attempt", attempt), slog.String("club", req.Club))
	logger.Info("submitting upload", slog.String("event", req.EventName), slog.String("file", req.File.Name))

	result, analysis, err := u.submit(ctx, req, attempt)

	u.mu.Lock()
	defer u.mu.Unlock()
	if err != nil {
		u.state = StateFailure
		u.message = msgUploadFailed
		logger.Error("upload failed", slog.String("state", string(u.state)), slog.String("error", err.Error()))
		u.notify.Notify(Notification{Level: LevelError, Message: msgUploadFailed})
		return nil, err
	}

	u.state = StateSuccess
	u.result = result
	if analysis != nil {
		u.analysis = analysis
		u.meta = feedback.ViewMeta{Event: req.EventName, Club: req.Club, DownloadLink: result.DownloadLink}
	}
	if result.Outcome == OutcomeDocument {
		u.message = msgDownloaded
	} else {
		u.message = msgAnalyzed
	}
	logger.Info("upload succeeded", slog.String("state", string(u.state)), slog.String("outcome", string(result.Outcome)))
	u.notify.Notify(Notification{Level: LevelInfo, Message: u.message})
	return result, nil
}

func (u *Upload) submit(ctx context.Context, req feedback.UploadRequest, attempt string) (*SubmitResult, *feedback.AnalysisResult, error) {
	resp, err := u.analyzer.Analyze(ctx, req)
	if err != nil {
		return nil, nil, &SubmitError{Err: err}
	}

	mediaType, _, err := mime.ParseMediaType(resp.ContentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(resp.ContentType))
	}

	switch mediaType {
	case "application/pdf", "application/octet-stream":
		saved, err := u.sink.Save(u.downloadName, resp.Body)
		if err != nil {
			return nil, nil, &SubmitError{Err: fmt.Errorf("save document: %w", err)}
		}
		return &SubmitResult{Outcome: OutcomeDocument, Attempt: attempt, SavedTo: saved}, nil, nil

	case "application/json":
		analysis, err := feedback.DecodeAnalysis(resp.Body)
		if err != nil {
			return nil, nil, &SubmitError{Err: err}
		}
		link := u.analyzer.ArtifactURL(analysis.PDFPath)
		view := feedback.Present(analysis, feedback.ViewMeta{Event: req.EventName, Club: req.Club, DownloadLink: link})
		return &SubmitResult{
			Outcome:      OutcomeAnalysis,
			Attempt:      attempt,
			Analysis:     &view,
			DownloadLink: link,
			Next:         &Nav{Route: RouteAnalysis, Club: req.Club},
		}, analysis, nil

	default:
		return nil, nil, &SubmitError{Err: fmt.Errorf("unexpected response content type %q", resp.ContentType)}
	}
}

// Acknowledge dismisses the outcome of the last submission.
func (u *Upload) Acknowledge() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.state == StateSubmitting {
		return
	}
	u.state = StateIdle
	u.result = nil
	u.message = ""
	u.analysis = nil
	u.meta = feedback.ViewMeta{}
}

// State returns a snapshot of the upload screen.
func (u *Upload) State() UploadStatus {
	u.mu.Lock()
	defer u.mu.Unlock()

	s := UploadStatus{
		State:   u.state,
		Busy:    u.state == StateSubmitting,
		Result:  u.result,
		Message: u.message,
		Fields: UploadFields{
			EventName:   u.form.EventName,
			Club:        u.form.Club,
			Description: u.form.Description,
			Date:        u.form.Date,
			Strength:    u.form.Strength,
		},
	}
	if u.form.File != nil {
		s.Fields.FileName = u.form.File.Name
	}
	return s
}

// AnalysisView renders the structured analysis of the current outcome. It is
// dropped on Acknowledge and when a new submission starts.
func (u *Upload) AnalysisView() feedback.AnalysisView {
	u.mu.Lock()
	defer u.mu.Unlock()
	return feedback.Present(u.analysis, u.meta)
}

// Latest retrieves the most recently generated document. It does not touch
// the submission state and may be called at any time.
func (u *Upload) Latest(ctx context.Context) (*Download, error) {
	data, err := u.analyzer.LatestSummary(ctx)
	if errors.Is(err, backend.ErrNotFound) {
		u.log.Info("latest document not ready")
		u.notify.Notify(Notification{Level: LevelWarn, Message: msgNotReady})
		return nil, ErrArtifactNotReady
	}
	if err != nil {
		u.log.Error("download latest document", slog.String("error", err.Error()))
		u.notify.Notify(Notification{Level: LevelError, Message: msgNotReady})
		return nil, fmt.Errorf("latest document: %w", err)
	}

	saved, err := u.sink.Save(u.downloadName, data)
	if err != nil {
		u.log.Error("save latest document", slog.String("error", err.Error()))
		u.notify.Notify(Notification{Level: LevelError, Message: msgSaveFailed})
		return nil, fmt.Errorf("save latest document: %w", err)
	}
	return &Download{Name: u.downloadName, SavedTo: saved, Data: data}, nil
}
