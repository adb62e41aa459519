package httpadapter

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

//go:embed openapi.yaml
var openAPISource []byte

var (
	contractOnce sync.Once
	contractDoc  *openapi3.T
	contractJSON []byte
	contractErr  error
)

// loadContract parses and validates the embedded API description once.
func loadContract() (*openapi3.T, []byte, error) {
	contractOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openAPISource)
		if err != nil {
			contractErr = fmt.Errorf("load openapi: %w", err)
			return
		}
		if err := doc.Validate(loader.Context); err != nil {
			contractErr = fmt.Errorf("validate openapi: %w", err)
			return
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			contractErr = fmt.Errorf("encode openapi: %w", err)
			return
		}
		contractDoc = doc
		contractJSON = raw
	})
	return contractDoc, contractJSON, contractErr
}

// contractValidator checks request bodies against an operation of the
// embedded contract.
type contractValidator struct {
	doc *openapi3.T
}

func newContractValidator() (*contractValidator, error) {
	doc, _, err := loadContract()
	if err != nil {
		return nil, err
	}
	return &contractValidator{doc: doc}, nil
}

func (v *contractValidator) validate(ctx context.Context, r *http.Request, path string) error {
	pathItem := v.doc.Paths.Value(path)
	if pathItem == nil {
		return fmt.Errorf("openapi: path %s is not described", path)
	}
	operation := pathItem.GetOperation(r.Method)
	if operation == nil {
		return fmt.Errorf("openapi: %s %s is not described", r.Method, path)
	}
	return openapi3filter.ValidateRequest(ctx, &openapi3filter.RequestValidationInput{
		Request: r,
		Route: &routers.Route{
			Spec:      v.doc,
			Path:      path,
			PathItem:  pathItem,
			Method:    r.Method,
			Operation: operation,
		},
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	})
}

func (rt *Router) openAPIJSON(w http.ResponseWriter, _ *http.Request) {
	_, raw, err := loadContract()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
