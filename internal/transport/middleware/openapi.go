package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/frahmantamala/agency-ops/internal"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

// RequestValidator checks documented requests against an OpenAPI document.
// Paths in the document are relative to prefix; undocumented routes pass.
type RequestValidator struct {
	router routers.Router
	prefix string
	logger *slog.Logger
}

// LoadRequestValidator reads and validates the OpenAPI file at path.
func LoadRequestValidator(ctx context.Context, path, prefix string, lg *slog.Logger) (*RequestValidator, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	return NewRequestValidator(ctx, doc, prefix, lg)
}

func NewRequestValidator(ctx context.Context, doc *openapi3.T, prefix string, lg *slog.Logger) (*RequestValidator, error) {
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	// match on the path alone; the mount prefix is stripped per request
	doc.Servers = nil

	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	if lg == nil {
		lg = slog.Default()
	}
	return &RequestValidator{router: router, prefix: strings.TrimRight(prefix, "/"), logger: lg}, nil
}

func (v *RequestValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, v.prefix)
		if path == "" {
			path = "/"
		}

		probe := r.Clone(r.Context())
		probe.URL.Path = path
		probe.URL.RawPath = ""

		route, params, err := v.router.FindRoute(probe)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    probe,
			PathParams: params,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				ExcludeRequestBody: !isJSON(r.Header.Get("Content-Type")),
				MultiError:         true,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			v.logger.Debug("request rejected by openapi validation", "path", r.URL.Path, "error", err)
			writeAppError(w, toValidationError(err))
			return
		}

		// the validator consumed the body and left a rewound copy on the probe
		r.Body = probe.Body
		next.ServeHTTP(w, r)
	})
}

func toValidationError(err error) *internal.AppError {
	var fieldErrs []internal.ValidationError
	collect := func(e error) {
		var reqErr *openapi3filter.RequestError
		if !errors.As(e, &reqErr) {
			fieldErrs = append(fieldErrs, internal.ValidationError{Field: "request", Message: e.Error(), Code: string(internal.ErrCodeValidationFailed)})
			return
		}
		field := "body"
		if reqErr.Parameter != nil {
			field = reqErr.Parameter.Name
		}
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			if p := schemaErr.JSONPointer(); len(p) > 0 {
				field = strings.Join(p, ".")
			}
			fieldErrs = append(fieldErrs, internal.ValidationError{Field: field, Message: schemaErr.Reason, Code: string(internal.ErrCodeValidationFailed)})
			return
		}
		msg := reqErr.Reason
		if msg == "" {
			msg = reqErr.Error()
		}
		fieldErrs = append(fieldErrs, internal.ValidationError{Field: field, Message: msg, Code: string(internal.ErrCodeValidationFailed)})
	}

	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, e := range multi {
			if nested, ok := e.(openapi3.MultiError); ok {
				for _, n := range nested {
					collect(n)
				}
				continue
			}
			collect(e)
		}
	} else {
		collect(err)
	}

	return internal.NewValidationError("Request does not match the API schema", internal.ErrCodeValidationFailed).
		WithDetails(internal.ValidationErrors{Errors: fieldErrs})
}
