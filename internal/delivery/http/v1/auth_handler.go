package v1

import (
	"net/http"
	"time"

	"cardealer-backend/config"
	"cardealer-backend/internal/usecase"
	"cardealer-backend/pkg/logger"
	"cardealer-backend/pkg/utils"
)

const (
	refreshTokenCookie = "refresh_token"
	refreshCookiePath  = "/"
	maxDeviceLength    = 200
)

type AuthHandler struct {
	authUC    *usecase.AuthUsecase
	secure    bool
	accessTTL time.Duration
}

func NewAuthHandler(authUC *usecase.AuthUsecase, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authUC:    authUC,
		secure:    cfg.IsProduction(),
		accessTTL: cfg.AccessTokenExpiry,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req usecase.RegisterInput
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.authUC.Register(r.Context(), req)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	device := r.UserAgent()
	if len(device) > maxDeviceLength {
		device = device[:maxDeviceLength]
	}

	res, err := h.authUC.Login(r.Context(), req.Email, req.Password, device)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}

	h.setAccessCookie(w, res.AccessToken)
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    res.RefreshToken,
		Path:     refreshCookiePath,
		Expires:  res.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accessToken": res.AccessToken,
		"user":        res.User,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		utils.WriteError(w, http.StatusUnauthorized, "Refresh token missing")
		return
	}

	accessToken, user, err := h.authUC.RefreshAccessToken(r.Context(), cookie.Value)
	if err != nil {
		h.clearCookies(w)
		writeUsecaseError(w, r, err)
		return
	}

	h.setAccessCookie(w, accessToken)
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accessToken": accessToken,
		"user":        user,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		// The client still wants its cookies cleared when revocation fails.
		if err := h.authUC.Logout(r.Context(), cookie.Value); err != nil {
			logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to revoke session on logout")
		}
	}

	h.clearCookies(w)
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	current, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.authUC.GetUserByID(r.Context(), current.ID)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	current, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req usecase.ProfileInput
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.authUC.UpdateProfile(r.Context(), current.ID, req)
	if err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, user)
}

// ChangePassword keeps the caller's own refresh session and revokes the rest.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	current, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	session := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		session = cookie.Value
	}

	if err := h.authUC.ChangePassword(r.Context(), current.ID, session, req.CurrentPassword, req.NewPassword); err != nil {
		writeUsecaseError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}

func (h *AuthHandler) setAccessCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     utils.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.accessTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookies(w http.ResponseWriter) {
	for _, c := range []struct{ name, path string }{
		{utils.AccessTokenCookie, "/"},
		{refreshTokenCookie, refreshCookiePath},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secure,
		})
	}
}
