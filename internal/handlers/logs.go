package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/ascension-log/internal/logger"
	"github.com/jwebster45206/ascension-log/internal/queue"
	"github.com/jwebster45206/ascension-log/internal/storage"
	"github.com/jwebster45206/ascension-log/pkg/ingest"
	"github.com/jwebster45206/ascension-log/pkg/render"
	"github.com/jwebster45206/ascension-log/pkg/summary"
	"github.com/jwebster45206/ascension-log/pkg/timeline"
)

const maxDocumentBytes = 32 << 20

// Enqueuer accepts background render jobs.
type Enqueuer interface {
	Enqueue(ctx context.Context, job *queue.RenderJob) error
}

type CreateLogResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name,omitempty"`
	Accepted int       `json:"accepted"`
	Errors   []string  `json:"errors"`
}

type LogResponse struct {
	ID        uuid.UUID           `json:"id"`
	Name      string              `json:"name,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	Rejected  int                 `json:"rejected"`
	Summary   *summary.LogSummary `json:"summary"`
}

type RundownResponse struct {
	ID     uuid.UUID `json:"id"`
	Format string    `json:"format"`
	Blocks []string  `json:"blocks"`
}

type RangeResponse struct {
	ID      uuid.UUID           `json:"id"`
	Start   int                 `json:"start"`
	End     int                 `json:"end"`
	Summary *summary.LogSummary `json:"summary"`
}

type RenderJobResponse struct {
	JobID   string   `json:"job_id"`
	Formats []string `json:"formats"`
}

type LogHandler struct {
	storage storage.Storage
	jobs    Enqueuer
	base    timeline.Options
	logger  *slog.Logger
}

// NewLogHandler creates the log handler. jobs may be nil, in which case
// background rendering is unavailable.
func NewLogHandler(store storage.Storage, jobs Enqueuer, base timeline.Options, logger *slog.Logger) *LogHandler {
	return &LogHandler{
		storage: store,
		jobs:    jobs,
		base:    base,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for log operations
// Routes:
// POST   /v1/logs              - Upload a log document
// GET    /v1/logs/{id}         - Log summary
// DELETE /v1/logs/{id}         - Delete a log and its renders
// GET    /v1/logs/{id}/rundown - Turn rundown blocks
// GET    /v1/logs/{id}/text    - Full textual log
// GET    /v1/logs/{id}/range   - Summary of a turn sub-range
// POST   /v1/logs/{id}/render  - Queue a background render
func (h *LogHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/logs"), "/")

	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported at /v1/logs.")
			return
		}
		h.handleCreate(w, r)
		return
	}

	idStr, action, _ := strings.Cut(path, "/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Warn("Invalid log ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid log ID format")
		return
	}
	log := logger.WithLogID(h.logger, id)

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.handleRead(w, r, id, log)
	case action == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, id, log)
	case action == "rundown" && r.Method == http.MethodGet:
		h.handleRundown(w, r, id, log)
	case action == "text" && r.Method == http.MethodGet:
		h.handleText(w, r, id, log)
	case action == "range" && r.Method == http.MethodGet:
		h.handleRange(w, r, id, log)
	case action == "render" && r.Method == http.MethodPost:
		h.handleRender(w, r, id, log)
	case action == "" || action == "rundown" || action == "text" || action == "range" || action == "render":
		log.Warn("Method not allowed for log endpoint", "method", r.Method, "action", action)
		writeError(w, h.logger, http.StatusMethodNotAllowed, fmt.Sprintf("Method %s not allowed", r.Method))
	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown log resource: "+action)
	}
}

func (h *LogHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, http.StatusRequestEntityTooLarge, "Log document too large")
			return
		}
		h.logger.Warn("Failed to read request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Failed to read request body")
		return
	}

	f := ingest.FormatFromContentType(r.Header.Get("Content-Type"))
	doc, parseErrs, err := ingest.Parse(data, f)
	if err != nil {
		h.logger.Warn("Invalid log document", "format", f.String(), "error", err)
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}

	st, rep := ingest.Apply(doc, h.base)
	rep.Errors = append(parseErrs, rep.Errors...)
	if err := st.CreateSummary(); err != nil {
		h.logger.Warn("Log document could not be reconstructed", "error", err)
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}

	canonical, err := doc.JSON()
	if err != nil {
		h.logger.Error("Failed to encode log document", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to store log")
		return
	}

	rec := &storage.LogRecord{ID: uuid.New(), Name: st.Name(), Document: canonical}
	if err := h.storage.SaveLog(r.Context(), rec); err != nil {
		h.logger.Error("Failed to save log", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to store log")
		return
	}

	logger.WithLogID(h.logger, rec.ID).Info("Log stored",
		"format", f.String(),
		"accepted", rep.Accepted,
		"rejected", len(rep.Errors))

	writeJSON(w, h.logger, http.StatusCreated, CreateLogResponse{
		ID:       rec.ID,
		Name:     rec.Name,
		Accepted: rep.Accepted,
		Errors:   rep.Messages(),
	})
}

// load rebuilds the store of a saved log. It writes the error response itself
// and returns nil when the caller should stop.
func (h *LogHandler) load(w http.ResponseWriter, r *http.Request, id uuid.UUID, log *slog.Logger) (*storage.LogRecord, *timeline.Store, *ingest.Report) {
	rec, err := h.storage.LoadLog(r.Context(), id)
	if err != nil {
		log.Error("Failed to load log", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load log")
		return nil, nil, nil
	}
	if rec == nil {
		log.Warn("Log not found")
		writeError(w, h.logger, http.StatusNotFound, "Log not found")
		return nil, nil, nil
	}

	st, rep, err := ingest.Load(rec.Document, ingest.FormatJSON, h.base)
	if err != nil {
		log.Error("Failed to rebuild stored log", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to rebuild log")
		return nil, nil, nil
	}
	return rec, st, &rep
}

func (h *LogHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID, log *slog.Logger) {
	rec, st, rep := h.load(w, r, id, log)
	if st == nil {
		return
	}
	sum, err := st.LogSummary()
	if err != nil {
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, LogResponse{
		ID:        rec.ID,
		Name:      rec.Name,
		CreatedAt: rec.CreatedAt,
		Rejected:  len(rep.Errors),
		Summary:   sum,
	})
}

func (h *LogHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID, log *slog.Logger) {
	if err := h.storage.DeleteLog(r.Context(), id); err != nil {
		log.Error("Failed to delete log", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete log")
		return
	}
	log.Info("Log deleted")
	w.WriteHeader(http.StatusNoContent)
}

func formatParam(r *http.Request) (render.Format, error) {
	name := r.URL.Query().Get("format")
	if name == "" {
		return render.PlainText, nil
	}
	f, ok := render.FormatByName(name)
	if !ok {
		return render.Format{}, fmt.Errorf("unknown format %q, expected one of %s", name, strings.Join(render.FormatNames(), ", "))
	}
	return f, nil
}

func (h *LogHandler) handleRundown(w http.ResponseWriter, r *http.Request, id uuid.UUID, log *slog.Logger) {
	f, err := formatParam(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	_, st, _ := h.load(w, r, id, log)
	if st == nil {
		return
	}
	blocks, err := st.TurnRundown(f)
	if err != nil {
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, RundownResponse{ID: id, Format: f.Name, Blocks: blocks})
}

func contentType(f render.Format) string {
	if f.Name == render.HTML.Name {
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

func writeText(w http.ResponseWriter, f render.Format, cache, text string) {
	w.Header().Set("Content-Type", contentType(f))
	w.Header().Set("X-Render-Cache", cache)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

func (h *LogHandler) handleText(w http.ResponseWriter, r *http.Request, id uuid.UUID, log *slog.Logger) {
	f, err := formatParam(r)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	var start time.Time
	if s := r.URL.Query().Get("start"); s != "" {
		start, err = time.Parse(ingest.DateLayout, s)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "start must be a YYYY-MM-DD date")
			return
		}
	}

	// Cached renders use the log's own start date
	cacheable := start.IsZero()
	if cacheable {
		text, ok, err := h.storage.LoadRender(r.Context(), id, f.Name)
		if err != nil {
			log.Warn("Render cache lookup failed", "format", f.Name, "error", err)
		} else if ok {
			writeText(w, f, "hit", text)
			return
		}
	}

	_, st, _ := h.load(w, r, id, log)
	if st == nil {
		return
	}
	text, err := st.FullTextualLog(f, start)
	if err != nil {
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}
	if cacheable {
		if err := h.storage.SaveRender(r.Context(), id, f.Name, text); err != nil {
			log.Warn("Failed to cache render", "format", f.Name, "error", err)
		}
	}
	writeText(w, f, "miss", text)
}

func intParam(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}

func (h *LogHandler) handleRange(w http.ResponseWriter, r *http.Request, id uuid.UUID, log *slog.Logger) {
	start, err := intParam(r, "start")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	end, err := intParam(r, "end")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	_, st, _ := h.load(w, r, id, log)
	if st == nil {
		return
	}
	sub, err := st.SubIntervalLogData(start, end)
	if err != nil {
		log.Warn("Sub-range rejected", "start", start, "end", end, "error", err)
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}
	sum, err := sub.LogSummary()
	if err != nil {
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}
	writeJSON(w, h.logger, http.StatusOK, RangeResponse{ID: id, Start: start, End: end, Summary: sum})
}

func (h *LogHandler) handleRender(w http.ResponseWriter, r *http.Request, id uuid.UUID, log *slog.Logger) {
	if h.jobs == nil {
		writeError(w, h.logger, http.StatusServiceUnavailable, "Background rendering is not available")
		return
	}

	formats := r.URL.Query()["format"]
	for _, name := range formats {
		if _, ok := render.FormatByName(name); !ok {
			writeError(w, h.logger, http.StatusBadRequest, fmt.Sprintf("unknown format %q", name))
			return
		}
	}
	if len(formats) == 0 {
		formats = render.FormatNames()
	}

	rec, err := h.storage.LoadLog(r.Context(), id)
	if err != nil {
		log.Error("Failed to load log", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load log")
		return
	}
	if rec == nil {
		writeError(w, h.logger, http.StatusNotFound, "Log not found")
		return
	}

	job := queue.NewRenderJob(id, formats)
	if err := h.jobs.Enqueue(r.Context(), job); err != nil {
		log.Error("Failed to enqueue render job", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to queue render")
		return
	}
	log.Info("Render job queued", "job_id", job.JobID, "formats", formats)
	writeJSON(w, h.logger, http.StatusAccepted, RenderJobResponse{JobID: job.JobID, Formats: formats})
}
