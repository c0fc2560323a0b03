package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"salesdash/internal/domain"
	"salesdash/internal/excel"
	"salesdash/internal/ingest"
	"salesdash/internal/service"

	"github.com/go-chi/chi/v5"
)

const (
	maxUploadBytes = 32 << 20
	exportBaseName = "Export_Donnees_Sales"
)

type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

type bulkRequest struct {
	Text string `json:"text"`
}

func NewHandler(svc *service.Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := parseOptionalInt(r.URL.Query().Get("page"), 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Records(r.Context(), filters, r.URL.Query().Get("search"), page)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	record := domain.DefaultRecord()
	if err := decodeJSON(r, &record); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.AddRecord(r.Context(), record)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, result)
}

func (h *Handler) BulkImport(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.BulkImport(r.Context(), req.Text)
	if errors.Is(err, ingest.ErrNoValidLines) {
		h.writeJSON(w, r, http.StatusUnprocessableEntity, map[string]any{
			"error":  err.Error(),
			"result": result,
		})
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

func (h *Handler) ClearRecords(w http.ResponseWriter, r *http.Request) {
	count, err := h.svc.Clear(r.Context())
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"status": "cleared", "total": count})
}

func (h *Handler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	result, err := h.svc.PreviewImport(header.Filename, file)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

func (h *Handler) CommitImport(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.CommitImport(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

func (h *Handler) DiscardImport(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DiscardPreview(chi.URLParam(r, "token")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dashboard, err := h.svc.Dashboard(r.Context(), filters)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, dashboard)
}

func (h *Handler) ProductMonthly(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	product := chi.URLParam(r, "product")
	items, err := h.svc.ProductMonthly(r.Context(), filters, product)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"product": product, "items": items})
}

func (h *Handler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	options, err := h.svc.FilterOptions(r.Context(), filters)
	if err != nil {
		h.internalError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, options)
}

func (h *Handler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", excel.WriteWorkbook)
}

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv; charset=utf-8", excel.WriteCSV)
}

func (h *Handler) export(
	w http.ResponseWriter,
	r *http.Request,
	ext string,
	contentType string,
	write func(w io.Writer, records []domain.ComputedRecord) error,
) {
	filters, err := parseFilters(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := h.svc.Export(r.Context(), filters, r.URL.Query().Get("search"))
	if err != nil {
		h.internalError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, records); err != nil {
		h.internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, exportBaseName, ext))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRecord),
		errors.Is(err, ingest.ErrEmptyInput),
		errors.Is(err, excel.ErrInsufficientData),
		errors.Is(err, excel.ErrNoRecognizedColumns),
		errors.Is(err, excel.ErrUnreadableFile):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPreviewNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.internalError(w, r, err)
	}
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// parseFilters reads repeated query parameters named after the canonical
// fields, e.g. ?brand=Samsung&brand=Tecno&annee=2025.
func parseFilters(r *http.Request) (domain.FilterSet, error) {
	query := r.URL.Query()
	values := func(key string) []string {
		var out []string
		for _, raw := range query[key] {
			if v := strings.TrimSpace(raw); v != "" {
				out = append(out, v)
			}
		}
		return out
	}

	filters := domain.FilterSet{
		Segment:       values(string(domain.FieldSegment)),
		Product:       values(string(domain.FieldProduct)),
		Zone:          values(string(domain.FieldZone)),
		District:      values(string(domain.FieldDistrict)),
		TypeOfPOS:     values(string(domain.FieldTypeOfPOS)),
		CategoryOfPOS: values(string(domain.FieldCategoryOfPOS)),
		Brand:         values(string(domain.FieldBrand)),
		Mois:          values(string(domain.FieldMois)),
		Quarter:       values(string(domain.FieldQuarter)),
		CodeWeek:      values(string(domain.FieldCodeWeek)),
		CodePOS:       values(string(domain.FieldCodePOS)),
	}
	for _, raw := range values(string(domain.FieldAnnee)) {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return domain.FilterSet{}, fmt.Errorf("invalid annee: %s", raw)
		}
		filters.Annee = append(filters.Annee, year)
	}
	return filters, nil
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseOptionalInt(raw string, defaultValue int) (int, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %s", raw)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("value cannot be negative")
	}
	return parsed, nil
}

// writeJSON logs payloads that cannot be encoded and answers 500 instead of
// sending a truncated body.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := writeJSON(w, status, payload); err != nil {
		h.logger.Error("encode response", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
	return err
}

func writeError(w http.ResponseWriter, status int, message string) {
	_ = writeJSON(w, status, map[string]any{"error": message})
}
