package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apprecords "github.com/bryanwahyu/mediscribe/internal/application/records"
	domai "github.com/bryanwahyu/mediscribe/internal/domain/ai"
	domain "github.com/bryanwahyu/mediscribe/internal/domain/records"
	"github.com/bryanwahyu/mediscribe/internal/middleware"
)

const maxUploadBytes = 25 << 20 // 25 MiB

type Router struct {
	recordsSvc *apprecords.Service
}

func NewRouter(recordsSvc *apprecords.Service) http.Handler {
	r := &Router{recordsSvc: recordsSvc}
	mux := chi.NewRouter()

	mux.Route("/api/v1/records", func(rt chi.Router) {
		rt.Post("/", r.wrap(r.handleUpload))
		rt.Get("/", r.wrap(r.handleList))
		rt.Get("/{id}", r.wrap(r.handleGet))
		rt.Post("/{id}/analyze", r.wrap(r.handleAnalyze))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps domain errors to HTTP statuses in one place. Callers only ever
// see the generic message per class, never the wrapped cause.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		switch {
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, sql.ErrNoRows):
			http.Error(w, "record not found", http.StatusNotFound)
		case errors.Is(err, domain.ErrNotOwner):
			http.Error(w, "not authorized", http.StatusUnauthorized)
		case errors.Is(err, domain.ErrAlreadyProcessing):
			http.Error(w, "analysis already in progress", http.StatusConflict)
		case errors.Is(err, domai.ErrQuotaExceeded):
			http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
		case errors.Is(err, domain.ErrAnalysisFailed):
			http.Error(w, "analysis failed", http.StatusInternalServerError)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

// POST /api/v1/records (multipart form, field "record")
func (r *Router) handleUpload(w http.ResponseWriter, req *http.Request) error {
	requester := middleware.GetUserFromContext(req.Context())

	req.Body = http.MaxBytesReader(w, req.Body, maxUploadBytes)
	file, header, err := req.FormFile("record")
	if err != nil {
		http.Error(w, "please upload a file in field 'record'", http.StatusBadRequest)
		return nil
	}
	defer file.Close()

	fileName := middleware.SanitizeString(header.Filename)
	if err := middleware.ValidateFileName(fileName); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	rec, err := r.recordsSvc.Upload(req.Context(), apprecords.UploadCommand{
		OwnerID:  requester,
		FileName: fileName,
		Body:     file,
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(rec)
}

// GET /api/v1/records?limit=20
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	requester := middleware.GetUserFromContext(req.Context())
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.recordsSvc.List(req.Context(), requester, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*domain.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /api/v1/records/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	requester := middleware.GetUserFromContext(req.Context())
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRecordID(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	rec, err := r.recordsSvc.Get(req.Context(), requester, domain.RecordID(id))
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rec)
}

// POST /api/v1/records/{id}/analyze
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	requester := middleware.GetUserFromContext(req.Context())
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateRecordID(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	middleware.IncrementAnalyses()
	middleware.IncrementAnalysesRunning()
	defer middleware.DecrementAnalysesRunning()

	rec, err := r.recordsSvc.Analyze(req.Context(), requester, domain.RecordID(id))
	if err != nil {
		if errors.Is(err, domain.ErrAnalysisFailed) {
			middleware.IncrementAnalysesFailed()
		}
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(rec)
}
