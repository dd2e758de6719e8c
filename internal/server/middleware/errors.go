package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	apperrors "github.com/3leaps/nimbusview/internal/errors"
	"github.com/3leaps/nimbusview/internal/observability"
)

// ErrorResponse is the JSON envelope this middleware writes, shared with
// the rest of the server.
type ErrorResponse = apperrors.HTTPErrorResponse

// Recovery converts handler panics into 500 envelopes. The panic value
// and stack are logged through the server logger; the response carries
// only the panic message.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				observability.ServerLogger.Error("panic recovered",
					zap.Any("panic", rv),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", apperrors.RequestIDFromContext(r.Context())),
					zap.ByteString("stack", debug.Stack()))

				appErr := apperrors.New(apperrors.CodeInternal, http.StatusInternalServerError,
					fmt.Sprintf("panic: %v", rv))
				writeErrorResponse(w, r, appErr)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// ErrorHandler is Recovery under the name route setup uses.
func ErrorHandler(next http.Handler) http.Handler {
	return Recovery(next)
}

// writeErrorResponse writes the envelope for an application error, pulling
// the request id from the request context.
func writeErrorResponse(w http.ResponseWriter, r *http.Request, appErr *apperrors.AppError) {
	apperrors.RespondWithError(w, r, appErr)
}
