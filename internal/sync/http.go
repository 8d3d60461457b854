package sync

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kisetsu-app/kisetsu/internal/core/season"
	"github.com/kisetsu-app/kisetsu/internal/platform/apperr"
	requestutil "github.com/kisetsu-app/kisetsu/internal/platform/request"
	"github.com/kisetsu-app/kisetsu/internal/platform/respond"
	"github.com/kisetsu-app/kisetsu/internal/platform/validate"
)

// Handler exposes sync triggers and cache maintenance over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes builds the sync operations sub-router.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/sync", handler.triggerSync)
	router.Post("/cache/cleanup", handler.cleanupCache)
	router.Delete("/cache/{season}/{year}", handler.invalidateSeason)
	return router
}

// syncRequest is the POST /sync body. An absent season means all four
// seasons of the year.
type syncRequest struct {
	Season string `json:"season"`
	Year   int    `json:"year"`
	Force  bool   `json:"force"`
}

// triggerSync handles POST /sync. The run executes synchronously; the
// response carries the per-season results.
func (handler *Handler) triggerSync(writer http.ResponseWriter, request *http.Request) {
	var body syncRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	filters, err := filtersFromRequest(body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	results := handler.service.SyncSeasons(request.Context(), filters, Options{ForceRefresh: body.Force})
	respond.OK(writer, map[string]any{"results": results})
}

// cleanupCache handles POST /cache/cleanup.
func (handler *Handler) cleanupCache(writer http.ResponseWriter, request *http.Request) {
	removed := handler.service.CleanupExpiredCache(request.Context())
	respond.OK(writer, map[string]int{"removed": removed})
}

// invalidateSeason handles DELETE /cache/{season}/{year}.
func (handler *Handler) invalidateSeason(writer http.ResponseWriter, request *http.Request) {
	parsed, err := season.Parse(requestutil.Param(request, "season"))
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError(err.Error()))
		return
	}

	year, err := strconv.Atoi(requestutil.Param(request, "year"))
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Year must be an integer"))
		return
	}

	filter, err := season.NewFilter(parsed, year)
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError(err.Error()))
		return
	}

	removed := handler.service.InvalidateSeason(request.Context(), filter)
	respond.OK(writer, map[string]int{"removed": removed})
}

// filtersFromRequest validates the body and expands it to season filters.
func filtersFromRequest(body syncRequest) ([]season.Filter, error) {
	validator := &validate.Validator{}
	validator.Range("year", body.Year, season.MinYear, time.Now().Year()+season.MaxYearsAhead)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if body.Season == "" {
		return season.AllForYear(body.Year), nil
	}

	parsed, err := season.Parse(body.Season)
	if err != nil {
		return nil, apperr.ValidationError(err.Error())
	}
	filter, err := season.NewFilter(parsed, body.Year)
	if err != nil {
		return nil, apperr.ValidationError(err.Error())
	}
	return []season.Filter{filter}, nil
}
