package statistics

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/transport"
)

// MaxTrendMonths bounds the months= parameter of the trend endpoint.
const MaxTrendMonths = 36

type ServiceAPI interface {
	Today() calendar.Date
	Overview(ctx context.Context, ownerID string, month calendar.Month) (Overview, error)
	Summary(ctx context.Context, ownerID string, period calendar.Range) (Totals, error)
	Breakdown(ctx context.Context, ownerID string, kind finance.TransactionType, period calendar.Range) (Breakdown, error)
	Trend(ctx context.Context, ownerID string, months []calendar.Month) ([]TrendPoint, error)
	DailyAverage(ctx context.Context, ownerID string, month calendar.Month) (Pace, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}
	month, appErr := h.month(r.URL.Query())
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	overview, err := h.Service.Overview(r.Context(), ownerID, month)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToOverviewResponse(overview))
}

// GetSummary handles GET /statistics/summary?month= or ?start=&end=.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}
	period, appErr := h.period(r.URL.Query())
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	totals, err := h.Service.Summary(r.Context(), ownerID, period)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToSummaryResponse(period, totals))
}

// GetBreakdown handles GET /statistics/breakdown?type=&month=. The type
// defaults to expense.
func (h *Handler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()

	kind := finance.Expense
	if raw := query.Get("type"); raw != "" {
		t, err := finance.ParseTransactionType(raw)
		if err != nil {
			h.WriteAppError(w, errors.NewValidationFieldError("type", err.Error(), errors.ErrCodeInvalidType))
			return
		}
		kind = t
	}
	period, appErr := h.period(query)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	breakdown, err := h.Service.Breakdown(r.Context(), ownerID, kind, period)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToBreakdownResponse(breakdown))
}

// GetTrend handles GET /statistics/trend?months=&end= or ?year=.
func (h *Handler) GetTrend(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}
	months, appErr := h.trendMonths(r.URL.Query())
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	points, err := h.Service.Trend(r.Context(), ownerID, months)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToTrendResponse(points))
}

func (h *Handler) GetDailyAverage(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}
	month, appErr := h.month(r.URL.Query())
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	pace, err := h.Service.DailyAverage(r.Context(), ownerID, month)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToPaceResponse(pace))
}

func (h *Handler) month(query url.Values) (calendar.Month, *errors.AppError) {
	raw := query.Get("month")
	if raw == "" {
		return h.Service.Today().MonthKey(), nil
	}
	m, err := calendar.ParseMonth(raw)
	if err != nil {
		return calendar.Month{}, errors.NewValidationFieldError("month", "month must be in YYYY-MM format", errors.ErrCodeInvalidMonth)
	}
	return m, nil
}

func (h *Handler) period(query url.Values) (calendar.Range, *errors.AppError) {
	rawStart, rawEnd := query.Get("start"), query.Get("end")
	if rawStart == "" && rawEnd == "" {
		m, appErr := h.month(query)
		if appErr != nil {
			return calendar.Range{}, appErr
		}
		return m.Range(), nil
	}
	start, err := calendar.ParseDate(rawStart)
	if err != nil {
		return calendar.Range{}, errors.NewValidationFieldError("start", "start must be a date in YYYY-MM-DD format", errors.ErrCodeInvalidDate)
	}
	end, err := calendar.ParseDate(rawEnd)
	if err != nil {
		return calendar.Range{}, errors.NewValidationFieldError("end", "end must be a date in YYYY-MM-DD format", errors.ErrCodeInvalidDate)
	}
	if end.Before(start) {
		return calendar.Range{}, errors.NewValidationFieldError("end", "end must not be before start", errors.ErrCodeInvalidDate)
	}
	return calendar.NewRange(start, end), nil
}

func (h *Handler) trendMonths(query url.Values) ([]calendar.Month, *errors.AppError) {
	if raw := query.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1 || year > 9999 {
			return nil, errors.NewValidationFieldError("year", "year must be a four digit number", errors.ErrCodeInvalidDate)
		}
		return calendar.YearMonths(year), nil
	}

	n := TrendWindow
	if raw := query.Get("months"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > MaxTrendMonths {
			return nil, errors.NewValidationFieldError("months", "months must be between 1 and "+strconv.Itoa(MaxTrendMonths), errors.ErrCodeValidationFailed)
		}
		n = v
	}

	end := h.Service.Today().MonthKey()
	if raw := query.Get("end"); raw != "" {
		m, err := calendar.ParseMonth(raw)
		if err != nil {
			return nil, errors.NewValidationFieldError("end", "end must be in YYYY-MM format", errors.ErrCodeInvalidMonth)
		}
		end = m
	}
	return calendar.TrailingMonths(end, n), nil
}
