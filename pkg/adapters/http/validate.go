package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

var (
	specOnce   sync.Once
	specDoc    *openapi3.T
	specRouter routers.Router
	specErr    error
)

// loadSpec parses and validates the embedded OpenAPI document once.
func loadSpec() (*openapi3.T, error) {
	specOnce.Do(func() {
		doc, err := openapi3.NewLoader().LoadFromData(rawSpec)
		if err != nil {
			specErr = fmt.Errorf("failed to load OpenAPI spec: %w", err)
			return
		}
		if err := doc.Validate(context.Background()); err != nil {
			specErr = fmt.Errorf("invalid OpenAPI spec: %w", err)
			return
		}
		router, err := legacy.NewRouter(doc)
		if err != nil {
			specErr = fmt.Errorf("failed to build OpenAPI router: %w", err)
			return
		}
		specDoc, specRouter = doc, router
	})
	return specDoc, specErr
}

// validate rejects requests that do not match the embedded OpenAPI document.
func (s *Server) validate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := loadSpec(); err != nil {
			http.Error(w, "Failed to load spec", http.StatusInternalServerError)
			s.Logger.Error("Failed to load OpenAPI spec", "error", err)
			return
		}

		route, pathParams, err := specRouter.FindRoute(r)
		if err != nil {
			var routeErr *routers.RouteError
			if errors.As(err, &routeErr) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
			s.Logger.Warn("Request rejected by schema", "path", r.URL.Path, "error", err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
