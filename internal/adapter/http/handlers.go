package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/alexadark/ffmpeg-api-service/internal/adapter/http/validation"
	"github.com/alexadark/ffmpeg-api-service/internal/domain"
	"github.com/alexadark/ffmpeg-api-service/internal/infrastructure/logger"
	"github.com/alexadark/ffmpeg-api-service/internal/port"
)

const maxRequestBody = 1 << 20 // 1 MiB is plenty for a JSON assembly request

type AssemblyRunner interface {
	Assemble(ctx context.Context, req domain.AssemblyRequest, progress func(int)) (*domain.AssemblyResult, error)
}

type OutputResolver interface {
	OutputPath(filename string) (string, error)
}

type Handlers struct {
	runner  AssemblyRunner
	store   port.JobStore
	outputs OutputResolver
}

func NewHandlers(runner AssemblyRunner, store port.JobStore, outputs OutputResolver) *Handlers {
	return &Handlers{
		runner:  runner,
		store:   store,
		outputs: outputs,
	}
}

type assembleRequest struct {
	Clips       []string       `json:"clips"`
	Transition  *transitionDTO `json:"transition"`
	Output      *outputDTO     `json:"output"`
	CallbackURL string         `json:"callbackUrl"`
}

type transitionDTO struct {
	Kind     string  `json:"kind"`
	Duration float64 `json:"duration"`
}

type outputDTO struct {
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type errorBody struct {
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type jobResponse struct {
	ID          string                 `json:"id"`
	Status      domain.JobStatus       `json:"status"`
	Progress    int                    `json:"progress"`
	Result      *domain.AssemblyResult `json:"result,omitempty"`
	Error       *errorBody             `json:"error,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
	CompletedAt *time.Time             `json:"completedAt,omitempty"`
}

type assembleAccepted struct {
	JobID  string           `json:"jobId"`
	Status domain.JobStatus `json:"status"`
}

type assembleCompleted struct {
	domain.AssemblyResult
	URL string `json:"url"`
}

// Assemble handles POST /api/assemble. With a callback URL the request is
// queued and answered 202; without one the pipeline runs inline and the
// connection blocks until it finishes.
func (h *Handlers) Assemble() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

		var body assembleRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, domain.NewError(domain.KindValidation, "malformed JSON body", err))
			return
		}

		req, err := body.toDomain()
		if err != nil {
			writeError(w, err)
			return
		}

		if req.CallbackURL != "" {
			h.enqueue(w, r, req)
			return
		}

		// Synchronous: run the whole pipeline on this connection.
		result, err := h.runner.Assemble(r.Context(), req, nil)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, assembleCompleted{
			AssemblyResult: *result,
			URL:            "/download/" + result.Filename,
		})
	}
}

func (h *Handlers) enqueue(w http.ResponseWriter, r *http.Request, req domain.AssemblyRequest) {
	job := &domain.Job{
		ID:          uuid.NewString(),
		Status:      domain.JobStatusQueued,
		Progress:    domain.ProgressQueued,
		CallbackURL: req.CallbackURL,
		Request:     req,
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.store.Create(r.Context(), job); err != nil {
		logger.Error.Printf("failed to enqueue job: %v", err)
		writeError(w, domain.NewError(domain.KindStorage, "failed to enqueue job", err))
		return
	}
	writeJSON(w, http.StatusAccepted, assembleAccepted{JobID: job.ID, Status: job.Status})
}

// JobStatus handles GET /job/{id}.
func (h *Handlers) JobStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		job, err := h.store.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrJobNotFound) {
				writeJSON(w, http.StatusNotFound, errorResponse{
					Error: errorBody{Kind: domain.KindValidation, Message: "job not found"},
				})
				return
			}
			logger.Error.Printf("failed to load job %s: %v", logger.SanitizeForLog(id), err)
			writeError(w, domain.NewError(domain.KindStorage, "failed to load job", err))
			return
		}

		resp := jobResponse{
			ID:        job.ID,
			Status:    job.Status,
			Progress:  job.Progress,
			Result:    job.Result,
			CreatedAt: job.CreatedAt,
		}
		if job.Status == domain.JobStatusFailed {
			resp.Error = &errorBody{Kind: job.ErrorKind, Message: job.ErrorMsg}
		}
		if job.CompletedAt.Valid {
			t := job.CompletedAt.Time
			resp.CompletedAt = &t
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Download handles GET /download/{filename}.
func (h *Handlers) Download() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filename := mux.Vars(r)["filename"]
		if err := validation.ValidateDownloadName(filename); err != nil {
			writeError(w, domain.NewError(domain.KindValidation, err.Error(), nil))
			return
		}

		path, err := h.outputs.OutputPath(filename)
		if err != nil {
			if errors.Is(err, domain.ErrOutputNotFound) {
				http.NotFound(w, r)
				return
			}
			logger.Error.Printf("failed to resolve output %s: %v", logger.SanitizeForLog(filename), err)
			writeError(w, domain.NewError(domain.KindStorage, "failed to resolve output", err))
			return
		}

		w.Header().Set("Content-Disposition", validation.ContentDisposition(filename))
		http.ServeFile(w, r, path)
	}
}

// Healthz handles GET /healthz.
func (h *Handlers) Healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (b assembleRequest) toDomain() (domain.AssemblyRequest, error) {
	req := domain.AssemblyRequest{
		ClipURLs:    b.Clips,
		CallbackURL: b.CallbackURL,
		Transition: domain.TransitionConfig{
			Kind:     domain.TransitionFade,
			Duration: domain.DefaultTransitionDuration,
		},
	}
	if b.Transition != nil {
		req.Transition.Duration = b.Transition.Duration
		if b.Transition.Kind != "" {
			req.Transition.Kind = domain.TransitionKind(b.Transition.Kind)
		}
	}
	if b.Output != nil {
		req.Output = domain.OutputConfig{
			Format: b.Output.Format,
			Width:  b.Output.Width,
			Height: b.Output.Height,
		}
	}
	req.Output = req.Output.WithDefaults()

	for _, clip := range b.Clips {
		u, err := url.Parse(clip)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return domain.AssemblyRequest{}, domain.NewError(domain.KindValidation,
				"clip URL must be absolute http(s): "+logger.SanitizeForLog(clip), nil)
		}
	}
	if b.CallbackURL != "" {
		u, err := url.Parse(b.CallbackURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return domain.AssemblyRequest{}, domain.NewError(domain.KindValidation,
				"callbackUrl must be absolute http(s)", nil)
		}
	}

	if err := req.Validate(); err != nil {
		return domain.AssemblyRequest{}, err
	}
	return req, nil
}

// statusForKind maps an error kind to its HTTP status. Download failures are
// upstream problems, hence 502.
func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindDownload:
		return http.StatusBadGateway
	case domain.KindTranscode:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	writeJSON(w, statusForKind(kind), errorResponse{
		Error: errorBody{Kind: kind, Message: err.Error()},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error.Printf("failed to encode response: %v", err)
	}
}
