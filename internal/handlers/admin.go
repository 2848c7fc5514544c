package handlers

import (
	"PortfolioCMS/internal/config"
	"PortfolioCMS/internal/middleware"
	"PortfolioCMS/internal/service"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// AdminHandler вход и выход администратора.
type AdminHandler struct {
	AdminService *service.AdminService
	Logger       *zap.SugaredLogger
	Config       *config.Config
}

func NewAdminHandler(adminService *service.AdminService, logger *zap.SugaredLogger, cfg *config.Config) *AdminHandler {
	return &AdminHandler{AdminService: adminService, Logger: logger, Config: cfg}
}

type credentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Login проверяет учётные данные и выставляет cookie сессии.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decodeJSON(w, r, h.Logger, "Login", &req) {
		return
	}
	if req.Login == "" || req.Password == "" {
		http.Error(w, "login and password are required", http.StatusBadRequest)
		return
	}

	admin, err := h.AdminService.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, h.Logger, "Login", err)
		return
	}
	if err := middleware.SetLoginCookie(w, admin.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Login: failed to set cookie", "admin_id", admin.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	h.Logger.Infow("admin logged in", "admin_id", admin.ID)
	writeJSON(w, http.StatusOK, admin)
}

// Logout удаляет cookie сессии.
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearLoginCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"result": "logged out"})
}

// Status сообщает, авторизован ли запрос.
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	result := "anonymous"
	if uid, ok := middleware.GetUserIDFromContext(r.Context()); ok {
		result = fmt.Sprintf("Admin ID = %d", uid)
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}
