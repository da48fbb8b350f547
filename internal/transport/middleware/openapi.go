package middleware

import (
	"errors"
	"net/http"

	"github.com/frahmantamala/personal-finance/internal"
	"github.com/frahmantamala/personal-finance/internal/transport"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
)

// LoadOpenAPI parses and validates an OpenAPI 3 document.
func LoadOpenAPI(data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, err
	}
	return doc, nil
}

// ValidateRequests checks parameters and JSON bodies against doc before the
// handler runs. Routes the document does not describe pass through, and
// security is left to the auth middleware.
func ValidateRequests(doc *openapi3.T, base *transport.BaseHandler) (func(http.Handler) http.Handler, error) {
	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, err
	}
	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		MultiError:         true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				var routeErr *routers.RouteError
				if errors.As(err, &routeErr) {
					next.ServeHTTP(w, r)
					return
				}
				base.WriteAppError(w, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed))
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				base.WriteAppError(w, requestError(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

func requestError(err error) *internal.AppError {
	var details []internal.ValidationError
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, e := range multi {
			details = append(details, fieldError(e))
		}
	} else {
		details = append(details, fieldError(err))
	}
	return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
		WithDetails(internal.ValidationErrors{Errors: details}).
		WithCause(err)
}

func fieldError(err error) internal.ValidationError {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		field := "body"
		if reqErr.Parameter != nil {
			field = reqErr.Parameter.Name
		}
		message := reqErr.Reason
		if message == "" && reqErr.Err != nil {
			message = reqErr.Err.Error()
		}
		return internal.ValidationError{Field: field, Message: message, Code: string(internal.ErrCodeValidationFailed)}
	}
	return internal.ValidationError{Field: "request", Message: err.Error(), Code: string(internal.ErrCodeValidationFailed)}
}
