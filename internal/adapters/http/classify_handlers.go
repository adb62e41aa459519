package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kirillkom/sitedocs/internal/core/domain"
)

type classifyRequest struct {
	Filename string `json:"filename"`
}

func (rt *Router) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": rt.svc.Classifier.Categories()})
}

func (rt *Router) classifyFilename(w http.ResponseWriter, r *http.Request) {
	if err := rt.validator.validate(r.Context(), r, "/v1/classify"); err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "classify filename", err))
		return
	}

	var req classifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "classify filename", errors.New("invalid json")))
		return
	}
	if req.Filename == "" {
		writeError(w, domain.WrapError(domain.ErrInvalidInput, "classify filename", errors.New("filename is required")))
		return
	}

	result := rt.svc.Classifier.ClassifyFilename(r.Context(), req.Filename)
	if rt.metrics != nil {
		rt.metrics.RecordClassification(serviceName, "classify", string(result.Category), result.Confidence)
	}
	writeJSON(w, http.StatusOK, result)
}
