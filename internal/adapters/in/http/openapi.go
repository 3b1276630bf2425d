package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// apiDocName is the swag instance the Swagger UI under /swagger/ reads.
const apiDocName = "fulfillment"

type apiDoc []byte

func (d apiDoc) ReadDoc() string {
	return string(d)
}

var apiDocOnce sync.Once

// registerAPIDoc publishes the document for the Swagger UI. swag keeps one
// registry per process, so only the first server registers.
func registerAPIDoc(spec *openapi3.T) error {
	raw, err := spec.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode API document: %w", err)
	}
	apiDocOnce.Do(func() {
		swag.Register(apiDocName, apiDoc(raw))
	})
	return nil
}

// validateRequests rejects requests whose parameters or body do not match the
// API document. Paths the document does not describe, such as /metrics, pass
// through untouched. Bodies are restored after validation so handlers that
// verify signatures still read the original bytes.
func validateRequests(spec *openapi3.T) (echo.MiddlewareFunc, error) {
	router, err := legacy.NewRouter(spec)
	if err != nil {
		return nil, fmt.Errorf("build request validator: %w", err)
	}
	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, pathParams, err := router.FindRoute(req)
			if err != nil {
				return next(c)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return errorJSON(c, http.StatusBadRequest, validationMessage(err))
			}
			return next(c)
		}
	}, nil
}

// validationMessage names the offending field without echoing its value.
func validationMessage(err error) string {
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			return fmt.Sprintf("Invalid request: %s: %s", strings.Join(pointer, "."), schemaErr.Reason)
		}
		return "Invalid request: " + schemaErr.Reason
	}

	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Parameter != nil {
			return fmt.Sprintf("Invalid request: parameter %s is missing or malformed", reqErr.Parameter.Name)
		}
		return "Invalid request body"
	}

	return "Invalid request"
}
