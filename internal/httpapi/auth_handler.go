package httpapi

import (
	"net/http"
	"strings"

	"gerai-be/internal/user"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	users user.Service
}

func NewAuthHandler(users user.Service) *AuthHandler {
	return &AuthHandler{users: users}
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}

func (req credentialsRequest) validate() map[string][]string {
	fields := map[string][]string{}
	if strings.TrimSpace(req.Email) == "" {
		fields["email"] = append(fields["email"], "email is required")
	} else if !strings.Contains(req.Email, "@") {
		fields["email"] = append(fields["email"], "email is not valid")
	}
	if len(req.Password) < 8 {
		fields["password"] = append(fields["password"], "password must be at least 8 characters")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func toAuthResponse(token string, u user.User) authResponse {
	var resp authResponse
	resp.Token = token
	resp.User.ID = u.ID
	resp.User.Email = u.Email
	resp.User.Role = string(u.Role)
	return resp
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := req.validate(); fields != nil {
		failFields(w, "validation failed", fields)
		return
	}

	token, u, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusCreated, toAuthResponse(token, u))
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if fields := req.validate(); fields != nil {
		failFields(w, "validation failed", fields)
		return
	}

	token, u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		failErr(w, r, err)
		return
	}

	ok(w, http.StatusOK, toAuthResponse(token, u))
}
