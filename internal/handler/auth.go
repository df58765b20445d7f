package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/modahub/storefront-api/internal/domain/auth"
	"github.com/modahub/storefront-api/internal/domain/user"
)

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "name, email and password are required")
		return
	}

	u, err := h.users.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			writeError(w, r, http.StatusBadRequest, "email already exists")
			return
		}
		writeServerError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, u)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			writeError(w, r, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeServerError(w, r, err)
		return
	}

	h.respondWithToken(w, r, http.StatusOK, u)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, u *user.User) {
	signed, err := h.tokens.Issue(u)
	if err != nil {
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, r, status, authResponse{User: toUserResponse(u), Token: signed})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request, _ auth.Actor) {
	u, err := h.users.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "user not found")
			return
		}
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct {
		User userResponse `json:"user"`
	}{User: toUserResponse(u)})
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.users.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "user not found with this email")
			return
		}
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "OTP sent to your email"})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.users.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		if errors.Is(err, user.ErrInvalidOTP) {
			writeError(w, r, http.StatusBadRequest, "invalid OTP or OTP expired")
			return
		}
		writeServerError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"message": "password reset successful"})
}
