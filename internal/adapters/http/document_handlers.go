package httpadapter

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kirillkom/sitedocs/internal/core/doctype"
	"github.com/kirillkom/sitedocs/internal/core/domain"
)

const (
	multipartMemoryBytes = 8 << 20
	xlsxContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if rt.cfg.APIMaxUploadMB > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, int64(rt.cfg.APIMaxUploadMB)<<20)
	}
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, domain.WrapError(domain.ErrPayloadTooLarge, "upload", err))
			return
		}
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("multipart field 'file' is required")))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "upload", errors.New("multipart field 'file' is required")))
		return
	}
	defer file.Close()

	doc, err := rt.svc.Ingestor.Upload(
		r.Context(),
		r.FormValue("project_id"),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordUpload(serviceName, doc.SizeBytes)
	}

	writeJSON(w, http.StatusAccepted, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDocumentFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}
	docs, err := rt.svc.Reader.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) documentStats(w http.ResponseWriter, r *http.Request) {
	counts, err := rt.svc.Reader.Stats(r.Context(), r.URL.Query().Get("project_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": counts})
}

func (rt *Router) exportDocuments(w http.ResponseWriter, r *http.Request) {
	filter, err := parseDocumentFilter(r)
	if err != nil {
		writeError(w, err)
		return
	}

	// Render fully before writing headers so failures still produce JSON.
	var buf bytes.Buffer
	if err := rt.svc.Exporter.Export(r.Context(), filter, &buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="documents.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (rt *Router) getDocumentByID(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.svc.Reader.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := rt.svc.Remover.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) reclassifyDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := rt.svc.Ingestor.Requeue(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, doc)
}

func parseDocumentFilter(r *http.Request) (domain.DocumentFilter, error) {
	q := r.URL.Query()
	filter := domain.DocumentFilter{
		ProjectID: strings.TrimSpace(q.Get("project_id")),
		Status:    domain.DocumentStatus(strings.TrimSpace(q.Get("status"))),
	}

	if raw := strings.TrimSpace(q.Get("category")); raw != "" {
		category, ok := doctype.Parse(raw)
		if !ok {
			return domain.DocumentFilter{}, domain.WrapError(domain.ErrInvalidInput, "list documents", fmt.Errorf("unknown category %q", raw))
		}
		filter.Category = category
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return domain.DocumentFilter{}, domain.WrapError(domain.ErrInvalidInput, "list documents", fmt.Errorf("unknown status %q", filter.Status))
	}

	var err error
	if filter.Limit, err = queryInt(q.Get("limit"), "limit"); err != nil {
		return domain.DocumentFilter{}, err
	}
	if filter.Offset, err = queryInt(q.Get("offset"), "offset"); err != nil {
		return domain.DocumentFilter{}, err
	}
	return filter, nil
}

func queryInt(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "list documents", fmt.Errorf("%s must be a non-negative integer", name))
	}
	return n, nil
}
