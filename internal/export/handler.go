package export

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	errors "github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/core/calendar"
	"github.com/frahmantamala/personal-finance/internal/core/finance"
	"github.com/frahmantamala/personal-finance/internal/transport"
)

type ServiceAPI interface {
	Export(ctx context.Context, ownerID string, req Request) (*Document, error)
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

// Export handles GET /export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.OwnerID(w, r)
	if !ok {
		return
	}

	req, appErr := ParseRequest(r)
	if appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	doc, err := h.Service.Export(r.Context(), ownerID, req)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		h.Logger.Error("failed to write export", "error", err)
	}
}

// ParseRequest reads format, start, end, type and category_id. Format
// defaults to xlsx and type "all" means no type restriction.
func ParseRequest(r *http.Request) (Request, *errors.AppError) {
	q := r.URL.Query()
	req := Request{Format: FormatXLSX}

	if f := q.Get("format"); f != "" {
		req.Format = Format(f)
		if !req.Format.Valid() {
			return req, errors.NewValidationFieldError("format", "format must be xlsx or csv", errors.ErrCodeValidationFailed)
		}
	}
	for name, dst := range map[string]*calendar.Date{"start": &req.Start, "end": &req.End} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		d, err := calendar.ParseDate(raw)
		if err != nil {
			return req, errors.NewValidationFieldError(name, name+" must be a date in YYYY-MM-DD form", errors.ErrCodeInvalidDate)
		}
		*dst = d
	}
	if t := q.Get("type"); t != "" && t != "all" {
		parsed, err := finance.ParseTransactionType(t)
		if err != nil {
			return req, errors.NewValidationFieldError("type", "type must be all, income or expense", errors.ErrCodeInvalidType)
		}
		req.Type = &parsed
	}
	if c := q.Get("category_id"); c != "" {
		req.CategoryID = &c
	}
	return req, nil
}
