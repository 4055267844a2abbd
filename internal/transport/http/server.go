package transporthttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventfeedback/internal/feedback"
	"eventfeedback/internal/screens"
)

const maxUploadBytes = 32 << 20

// Screens groups the controllers the shell drives.
type Screens struct {
	Clubs     *screens.Clubs
	Dashboard *screens.Dashboard
	Reports   *screens.Reports
	Upload    *screens.Upload
	Inbox     *screens.Inbox
}

type Server struct {
	screens  Screens
	exporter feedback.SummaryExporter
	metrics  http.Handler
	timeout  time.Duration
	log      *slog.Logger
}

func NewServer(sc Screens, exporter feedback.SummaryExporter, metrics http.Handler, timeout time.Duration, logger *slog.Logger) *Server {
	if sc.Inbox == nil {
		sc.Inbox = &screens.Inbox{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		screens:  sc,
		exporter: exporter,
		metrics:  metrics,
		timeout:  timeout,
		log:      logger,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.health)
	mux.HandleFunc("GET /clubs", s.handleClubs)
	mux.HandleFunc("GET /dashboard/{club}", s.handleDashboard)
	mux.HandleFunc("GET /dashboard/{club}/export", s.handleExport)
	mux.HandleFunc("GET /reports/{club}", s.handleReports)
	mux.HandleFunc("POST /reports/{club}/selection", s.handleSelect)
	mux.HandleFunc("DELETE /reports/{club}/selection", s.handleClearSelection)
	mux.HandleFunc("DELETE /reports/{club}/items/{pdf...}", s.handleDelete)
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("POST /upload/ack", s.handleAck)
	mux.HandleFunc("GET /upload/state", s.handleUploadState)
	mux.HandleFunc("GET /analysis", s.handleAnalysis)
	mux.HandleFunc("GET /latest", s.handleLatest)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	mux.Handle("GET /swagger/openapi.yaml", swaggerSpec)
	mux.Handle("GET /swagger", swaggerUI)
	mux.Handle("GET /swagger/", swaggerUI)
	return mux
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleClubs(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.screens.Clubs.List())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	club, ok := s.club(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.context(r)
	defer cancel()

	s.writeJSON(w, http.StatusOK, s.screens.Dashboard.Open(ctx, club))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	club, ok := s.club(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	ctx, cancel := s.context(r)
	defer cancel()
	view := s.screens.Dashboard.Open(ctx, club)
	if view.Club != club {
		s.writeError(w, http.StatusConflict, "dashboard switched to another club")
		return
	}

	data, filename, mime, err := s.exporter.Export(club, view.Summary, format)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	club, ok := s.club(w, r)
	if !ok {
		return
	}
	ctx, cancel := s.context(r)
	defer cancel()

	s.writeJSON(w, http.StatusOK, s.screens.Reports.Open(ctx, club))
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	club, ok := s.club(w, r)
	if !ok {
		return
	}
	pdf := r.URL.Query().Get("pdf")
	if pdf == "" {
		s.writeError(w, http.StatusBadRequest, "pdf is required")
		return
	}

	if s.screens.Reports.View().Club != club {
		ctx, cancel := s.context(r)
		defer cancel()
		s.screens.Reports.Open(ctx, club)
	}

	viewer, err := s.screens.Reports.Select(pdf)
	if errors.Is(err, screens.ErrUnknownReport) {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, viewer)
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.club(w, r); !ok {
		return
	}
	s.screens.Reports.ClearSelection()
	s.writeJSON(w, http.StatusOK, s.screens.Reports.View())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.club(w, r); !ok {
		return
	}
	pdf := r.PathValue("pdf")

	ctx, cancel := s.context(r)
	defer cancel()
	if confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); confirm {
		ctx = screens.WithConfirmation(ctx)
	}

	err := s.screens.Reports.Delete(ctx, pdf)
	switch {
	case errors.Is(err, screens.ErrNotConfirmed):
		s.writeError(w, http.StatusPreconditionRequired, "deletion must be confirmed with confirm=true")
	case errors.Is(err, screens.ErrDeleteInFlight):
		s.writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, s.screens.Reports.View())
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	// Each request carries the whole form; nothing from an earlier request survives.
	up := s.screens.Upload
	for _, field := range []string{
		screens.FieldEventName,
		screens.FieldClub,
		screens.FieldDescription,
		screens.FieldDate,
		screens.FieldStrength,
	} {
		_ = up.SetField(field, r.FormValue(field))
	}

	var upload *feedback.UploadFile
	if file, header, err := r.FormFile(screens.FieldFile); err == nil {
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "read upload file")
			return
		}
		upload = &feedback.UploadFile{Name: header.Filename, Data: data}
	}
	up.SetFile(upload)

	ctx, cancel := s.context(r)
	defer cancel()

	up.Acknowledge()
	result, err := up.Submit(ctx)

	var verr *screens.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeError(w, http.StatusUnprocessableEntity, verr.Error())
	case errors.Is(err, screens.ErrBusy):
		s.writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		s.writeError(w, http.StatusBadGateway, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleAck(w http.ResponseWriter, r *http.Request) {
	s.screens.Upload.Acknowledge()
	s.writeJSON(w, http.StatusOK, s.screens.Upload.State())
}

func (s *Server) handleUploadState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.screens.Upload.State())
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.screens.Upload.AnalysisView())
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.context(r)
	defer cancel()

	dl, err := s.screens.Upload.Latest(ctx)
	if errors.Is(err, screens.ErrArtifactNotReady) {
		s.writeError(w, http.StatusNotFound, "PDF not available yet.")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+dl.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dl.Data)
}

// club validates the {club} path segment against the configured clubs.
func (s *Server) club(w http.ResponseWriter, r *http.Request) (string, bool) {
	club := strings.TrimSpace(r.PathValue("club"))
	if _, err := s.screens.Clubs.Choose(club); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return club, true
}

func (s *Server) context(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), s.timeout)
}

type envelope struct {
	Data          any                    `json:"data,omitempty"`
	Error         string                 `json:"error,omitempty"`
	Notifications []screens.Notification `json:"notifications,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: data, Notifications: s.screens.Inbox.Drain()}); err != nil {
		s.log.Debug("write response", slog.String("error", err.Error()))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Error: message, Notifications: s.screens.Inbox.Drain()})
}
