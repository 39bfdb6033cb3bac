package codeserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anatolykoptev/go_ytcode/internal/engine"
	"github.com/anatolykoptev/go_ytcode/internal/engine/store"
	"github.com/anatolykoptev/go_ytcode/internal/extraction"
)

const maxBodyBytes = 64 << 10

type extractRequest struct {
	URL   string `json:"url"`
	Force bool   `json:"force"`
}

type errorBody struct {
	Error string `json:"error"`
}

// NewRouter returns the REST API.
func NewRouter(svc Extractor) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	h := &handlers{svc: svc}
	r.Get("/api/health", h.health)
	r.Get("/metrics", h.metrics)
	r.Route("/api/videos", func(r chi.Router) {
		r.Post("/extract", h.extract)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/{id}/download", h.download)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("api: request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	})
}

type handlers struct {
	svc Extractor
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) metrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(engine.FormatMetrics()))
}

func (h *handlers) extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusUnprocessableEntity, "url is required")
		return
	}

	rec, err := h.svc.Submit(r.Context(), req.URL, req.Force)
	switch {
	case errors.Is(err, extraction.ErrInvalidURL):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, extraction.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		slog.Error("api: submit failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusOK
	if rec.InFlight() {
		status = http.StatusAccepted
	}
	writeJSON(w, status, viewOf(rec, false))
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := h.svc.List(r.Context(), limit)
	if err != nil {
		slog.Error("api: list failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	views := viewsOf(records)
	writeJSON(w, http.StatusOK, ListOutput{Records: views, Total: len(views)})
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "extraction not found")
		return
	}
	if err != nil {
		slog.Error("api: get failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(rec, true))
}

func (h *handlers) download(w http.ResponseWriter, r *http.Request) {
	p, rec, err := h.svc.Download(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "extraction not found")
		return
	case errors.Is(err, extraction.ErrNotCompleted):
		writeError(w, http.StatusConflict, "extraction is "+string(rec.Status))
		return
	case errors.Is(err, extraction.ErrNoCode):
		writeError(w, http.StatusNotFound, "no code files were extracted for this video")
		return
	case err != nil:
		slog.Error("api: archive failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to build archive")
		return
	}

	f, err := os.Open(p)
	if err != nil {
		slog.Error("api: open archive", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to open archive")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+archiveFilename(rec)+`"`)
	var modified time.Time
	if info, err := f.Stat(); err == nil {
		modified = info.ModTime()
	}
	http.ServeContent(w, r, archiveFilename(rec), modified, f)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("api: encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}
