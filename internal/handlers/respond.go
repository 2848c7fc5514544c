package handlers

import (
	"PortfolioCMS/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor сопоставляет ошибку сервиса с HTTP-статусом.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateName), errors.Is(err, service.ErrCycle), errors.Is(err, service.ErrLoginTaken):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidName), errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError отвечает статусом по ошибке. Внутренние ошибки логируются, клиенту уходит общий текст.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if errors.Is(err, service.ErrIntegrity) {
			logger.Errorw(op+": folder hierarchy corrupted", "error", err)
		} else {
			logger.Errorw(op+": service error", "error", err)
		}
		http.Error(w, "internal error", status)
		return
	}
	logger.Warnw(op+": rejected", "status", status, "error", err)
	http.Error(w, err.Error(), status)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, logger *zap.SugaredLogger, op string, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warnw(op+": invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return false
	}
	return true
}
