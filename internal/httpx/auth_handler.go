package httpx

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ariefcatur/go-shop-cart.git/internal/auth"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	Auth *auth.Service
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Post("/api/signup", h.signup)
	r.Post("/api/login", h.login)
	r.Post("/api/logout", h.logout)
	r.Get("/api/session", h.session)
}

type signupReq struct {
	FirstName string `json:"f_name"`
	LastName  string `json:"l_name"`
	Username  string `json:"username"`
	Address   string `json:"address"`
	Phone     string `json:"number"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	u, err := h.Auth.SignUp(r.Context(), auth.SignUpInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Address:   req.Address,
		Phone:     req.Phone,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "signup successful",
		"user_id": u.ID,
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	token, u, err := h.Auth.LogIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "login successful",
		"token":    token,
		"username": u.Username,
		"is_admin": u.Role == "admin",
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	if token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing token"})
		return
	}
	if err := h.Auth.LogOut(r.Context(), token); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

func (h *AuthHandler) session(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	userID, err := h.Auth.UserID(r.Context(), token)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"logged_in": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logged_in": true, "user_id": userID})
}
