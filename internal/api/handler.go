package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/counsel/internal/documents"
	"github.com/JaimeStill/counsel/pkg/handlers"
	"github.com/JaimeStill/counsel/pkg/middleware"
	"github.com/JaimeStill/counsel/pkg/module"
	"github.com/JaimeStill/counsel/pkg/storage"
	"github.com/JaimeStill/counsel/workflow"
)

// multipartMemory is how much of an upload ParseMultipartForm keeps in
// memory before spilling to temporary files.
const multipartMemory = 8 << 20

// Analyzer runs the pipeline over a staged file.
type Analyzer interface {
	Run(ctx context.Context, path string, progress func(workflow.Update)) (*workflow.Result, error)
}

// RunObserver is told about every finished run.
type RunObserver interface {
	ObserveRun(*workflow.Result)
}

// BlobRequest names a contract in blob storage.
type BlobRequest struct {
	Key string `json:"key"`
}

// ProgressEvent is one line of a streamed analysis.
type ProgressEvent struct {
	Node         string        `json:"node"`
	Step         workflow.Step `json:"step"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// FinalEvent is the last line of a streamed analysis.
type FinalEvent struct {
	Analysis *workflow.Result `json:"analysis"`
	Error    string           `json:"error,omitempty"`
}

// Handler serves the analyses endpoints.
type Handler struct {
	analyzer      Analyzer
	store         storage.System
	results       *Results
	observer      RunObserver
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler. observer may be nil.
func NewHandler(
	analyzer Analyzer,
	store storage.System,
	results *Results,
	observer RunObserver,
	logger *slog.Logger,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		analyzer:      analyzer,
		store:         store,
		results:       results,
		observer:      observer,
		logger:        logger.With("handler", "analyses"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group for analysis endpoints.
func (h *Handler) Routes() module.Group {
	return module.Group{
		Prefix: "/analyses",
		Routes: []module.Route{
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/blob", Handler: h.Blob},
			{Method: "POST", Pattern: "/stream", Handler: h.Stream},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// Upload analyses a multipart "file" upload and responds with the result:
// 200 when the run completes, 422 when it ends in the error terminal.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	src, err := h.stageUpload(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}
	defer src.Close()

	h.respond(w, r, h.run(r.Context(), src, nil))
}

// Blob analyses a contract fetched from blob storage.
func (h *Handler) Blob(w http.ResponseWriter, r *http.Request) {
	var req BlobRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: key required", ErrInvalidRequest))
		return
	}

	src, err := documents.FromBlob(r.Context(), h.store, req.Key, h.maxUploadSize)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}
	defer src.Close()

	h.respond(w, r, h.run(r.Context(), src, nil))
}

// Stream analyses an upload and writes newline-delimited JSON: one
// ProgressEvent per executed node, then a FinalEvent.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	src, err := h.stageUpload(w, r)
	if err != nil {
		handlers.RespondError(w, h.logger, documents.MapHTTPStatus(err), err)
		return
	}
	defer src.Close()

	stream := handlers.NewStream(w)
	progress := func(u workflow.Update) {
		event := ProgressEvent{Node: u.Node, Step: u.State.Step}
		if u.State.Failed() {
			event.ErrorMessage = u.State.ErrorMessage
		}
		if err := stream.Send(event); err != nil {
			h.logger.Warn("progress write failed", "error", err)
		}
	}

	out := h.run(r.Context(), src, progress)
	final := FinalEvent{Analysis: out.result}
	if out.err != nil {
		final.Error = out.err.Error()
	}
	if err := stream.Send(final); err != nil {
		h.logger.Warn("final write failed", "error", err)
	}
}

// Find returns a cached analysis by id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	res, ok := h.results.Find(id)
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrResultNotFound)
		return
	}

	handlers.RespondJSON(w, statusFor(res), res)
}

func (h *Handler) stageUpload(w http.ResponseWriter, r *http.Request) (*documents.Source, error) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, documents.ErrFileTooLarge
		}
		return nil, fmt.Errorf("%w: %w", documents.ErrInvalidFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: file field required", documents.ErrInvalidFile)
	}
	defer file.Close()

	return documents.FromUpload(file, header.Filename, h.maxUploadSize)
}

type runOutcome struct {
	result *workflow.Result
	err    error
}

func (h *Handler) run(ctx context.Context, src *documents.Source, progress func(workflow.Update)) runOutcome {
	logger := h.logger.With("request_id", middleware.RequestIDFrom(ctx), "filename", src.Filename)

	res, err := h.analyzer.Run(ctx, src.Path, progress)
	if err != nil {
		logger.Error("pipeline aborted", "error", err)
	}
	if res == nil {
		return runOutcome{err: err}
	}

	h.results.Store(res)
	if h.observer != nil {
		h.observer.ObserveRun(res)
	}

	logger.Info("analysis finished", "analysis_id", res.ID, "step", res.State.Step)
	return runOutcome{result: res, err: err}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, out runOutcome) {
	if out.result == nil {
		err := out.err
		if err == nil {
			err = errors.New("pipeline produced no result")
		}
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, statusFor(out.result), out.result)
}

func statusFor(res *workflow.Result) int {
	if res.State.Completed() {
		return http.StatusOK
	}
	return http.StatusUnprocessableEntity
}
