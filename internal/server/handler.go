package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rewired-gh/countrystats/internal/analysis"
	"github.com/rewired-gh/countrystats/internal/catalog"
	"github.com/rewired-gh/countrystats/internal/errsink"
	"github.com/rewired-gh/countrystats/internal/models"
	"github.com/rewired-gh/countrystats/internal/render"
	"github.com/rewired-gh/countrystats/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HistoryLister lists archived runs.
type HistoryLister interface {
	History(ctx context.Context, limit int) ([]storage.Run, error)
}

// Notifier is told about every valid analysis produced through the API.
type Notifier interface {
	SendAnalysis(state models.Reader, report string) error
}

// Handler serves the analysis API. Recalculation is serialized; a request
// arriving while one is in flight is rejected rather than queued.
type Handler struct {
	session  *analysis.Session
	sink     *errsink.Slot
	history  HistoryLister
	notifier Notifier

	mu sync.Mutex
}

func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		session:  deps.Session,
		sink:     deps.Sink,
		history:  deps.History,
		notifier: deps.Notifier,
	}
}

type catalogResponse struct {
	Countries  []catalog.Country   `json:"countries"`
	Indicators []catalog.Indicator `json:"indicators"`
	Views      []string            `json:"views"`
	MinYear    int                 `json:"min_year"`
	MaxYear    int                 `json:"max_year"`
}

type analysisRequest struct {
	Country   string `json:"country"`
	Indicator string `json:"indicator"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`
}

type analysisResponse struct {
	Analysis       *models.State `json:"analysis"`
	Message        string        `json:"message,omitempty"`
	CountryChanged bool          `json:"country_changed"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, catalogResponse{
		Countries:  catalog.Countries,
		Indicators: catalog.Indicators,
		Views:      catalog.Views,
		MinYear:    catalog.MinYear,
		MaxYear:    catalog.MaxYear,
	})
}

func (h *Handler) GetError(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, errorResponse{Message: h.sink.Current()})
}

func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	state := h.session.Current()
	writeJSON(r.Context(), w, http.StatusOK, analysisResponse{
		Analysis:       state,
		Message:        h.sink.Current(),
		CountryChanged: state.CountryChanged(),
	})
}

func (h *Handler) Recalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sel, err := selectionFrom(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !h.mu.TryLock() {
		http.Error(w, "analysis already in progress", http.StatusConflict)
		return
	}
	defer h.mu.Unlock()

	state, err := h.session.Apply(ctx, sel)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn().Err(err).Msg("recalculation abandoned by client")
			http.Error(w, "request cancelled", http.StatusServiceUnavailable)
			return
		}
		logger.Error().Err(err).Msg("recalculation failed")
		http.Error(w, h.sink.Current(), http.StatusBadGateway)
		return
	}

	if state.Valid() && h.notifier != nil {
		if report, err := render.ReportString(state); err == nil {
			if err := h.notifier.SendAnalysis(state, report); err != nil {
				logger.Warn().Err(err).Msg("failed to send analysis notification")
			}
		}
	}

	writeJSON(ctx, w, http.StatusOK, analysisResponse{
		Analysis:       state,
		Message:        h.sink.Current(),
		CountryChanged: state.CountryChanged(),
	})
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := render.Report(&buf, h.session.Current()); err != nil {
		writeRenderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("view")
	if name == "" {
		name = string(render.ViewBar)
	}
	view, err := render.ParseView(name)
	if err != nil || view == render.ViewReport {
		http.Error(w, fmt.Sprintf("invalid chart view: %q", name), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := render.Chart(&buf, h.session.Current(), view); err != nil {
		writeRenderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) GetWorkbook(w http.ResponseWriter, r *http.Request) {
	state := h.session.Current()

	var buf bytes.Buffer
	if err := render.Workbook(&buf, state); err != nil {
		writeRenderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_%s_%d-%d.xlsx"`,
		catalog.CountryCode(state.Country()), catalog.IndicatorAt(state.Indicator()).Code,
		state.StartYear(), state.EndYear()))
	_, _ = buf.WriteTo(w)
}

func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.history == nil {
		http.Error(w, "archive disabled", http.StatusNotFound)
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid 'limit' parameter", http.StatusBadRequest)
			return
		}
		limit = n
	}

	runs, err := h.history.History(ctx, limit)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list history")
		http.Error(w, "failed to list history", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	writeJSON(ctx, w, http.StatusOK, runs)
}

func selectionFrom(req analysisRequest) (analysis.Selection, error) {
	country, ok := catalog.CountryByCode(req.Country)
	if !ok {
		return analysis.Selection{}, fmt.Errorf("unknown country: %q", req.Country)
	}
	indicator, ok := catalog.IndicatorByCode(req.Indicator)
	if !ok {
		return analysis.Selection{}, fmt.Errorf("unknown indicator: %q", req.Indicator)
	}
	if !catalog.ValidYear(req.StartYear) {
		return analysis.Selection{}, fmt.Errorf("start year %d outside %d-%d", req.StartYear, catalog.MinYear, catalog.MaxYear)
	}
	if !catalog.ValidYear(req.EndYear) {
		return analysis.Selection{}, fmt.Errorf("end year %d outside %d-%d", req.EndYear, catalog.MinYear, catalog.MaxYear)
	}
	return analysis.Selection{
		Country:   country,
		Indicator: indicator,
		StartYear: req.StartYear,
		EndYear:   req.EndYear,
	}, nil
}

func writeRenderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, render.ErrInvalidDataset), errors.Is(err, render.ErrNonNumeric):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to render")
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}
