package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/vetdesk/vetdesk/internal/domain/auth"
	apperrors "github.com/vetdesk/vetdesk/internal/errors"
	"github.com/vetdesk/vetdesk/internal/service"
)

// Error codes returned in the "error" field of JSON error bodies.
const (
	errCodeUnauthenticated  = "authentication_required"
	errCodeInsufficientRole = "insufficient_permissions"
	errCodeForbiddenTarget  = "forbidden_target"
	errCodeNotFound         = "not_found"
	errCodeValidation       = "validation_failed"
	errCodeConflict         = "conflict"
	errCodeInUse            = "in_use"
	errCodeTimeout          = "timeout"
	errCodeInternal         = "internal_error"
	errCodeProviderOff      = "oauth_unavailable"
)

// statusForCode maps application error codes to HTTP statuses and public error codes.
func statusForCode(code apperrors.ErrorCode) (int, string) {
	switch code {
	case apperrors.ErrCodeUnauthenticated:
		return http.StatusUnauthorized, errCodeUnauthenticated
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden, errCodeInsufficientRole
	case apperrors.ErrCodeForbiddenTarget:
		return http.StatusForbidden, errCodeForbiddenTarget
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound, errCodeNotFound
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest, errCodeValidation
	case apperrors.ErrCodeConflict:
		return http.StatusConflict, errCodeConflict
	case apperrors.ErrCodeForeignKey:
		return http.StatusConflict, errCodeInUse
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, errCodeTimeout
	default:
		return http.StatusInternalServerError, errCodeInternal
	}
}

// writeServiceError renders a service-layer error. AppErrors keep their message;
// anything else is logged and reported as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrProviderUnavailable) {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: errCodeProviderOff, Err: err})
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status, code := statusForCode(appErr.Code)
		if status == http.StatusInternalServerError {
			logInternal(r, err)
		}
		WriteError(w, ErrorParams{Code: status, ErrCode: code, Err: errors.New(appErr.Message), Field: appErr.Field})
		return
	}

	logInternal(r, err)
	WriteError(w, ErrorParams{
		Code:    http.StatusInternalServerError,
		ErrCode: errCodeInternal,
		Err:     errors.New("internal server error"),
	})
}

func logInternal(r *http.Request, err error) {
	slog.Default().ErrorContext(r.Context(), "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
}

// writeDecision renders a negative policy decision.
func writeDecision(w http.ResponseWriter, d domainauth.Decision) {
	switch d.Reason {
	case domainauth.DenyUnauthenticated:
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: errCodeUnauthenticated,
			Err:     errors.New("authentication required"),
		})
	case domainauth.DenyForbiddenTarget:
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: errCodeForbiddenTarget,
			Err:     errors.New("action not permitted on this record"),
		})
	default:
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: errCodeInsufficientRole,
			Err:     errors.New("insufficient permissions"),
		})
	}
}
