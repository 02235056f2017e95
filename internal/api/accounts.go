package api

import (
	"net/http"
	"strings"
	"time"

	"storefront/internal/auth"
)

func (s *Server) signup(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if _, err := s.accounts.Signup(r.Context(), req.Username, req.Email, req.Password); err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created successfully"})
	return nil
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *Server) signin(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest("Email and password are required")
	}

	sess, err := s.accounts.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, struct {
		Token     string       `json:"token"`
		ExpiresAt time.Time    `json:"expiresAt"`
		User      userResponse `json:"user"`
	}{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt.UTC(),
		User: userResponse{
			ID:       sess.User.ID.Hex(),
			Username: sess.User.Username,
			Email:    sess.User.Email,
		},
	})
	return nil
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := s.resets.RequestReset(r.Context(), req.Email); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent successfully"})
	return nil
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"newPassword"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if err := s.resets.ConfirmReset(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password reset successfully"})
	return nil
}

// me echoes the verified claims of the caller.
func (s *Server) me(w http.ResponseWriter, r *http.Request) error {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		return auth.ErrMissingToken
	}
	resp := map[string]any{
		"id":       claims.Subject,
		"username": claims.Username,
	}
	if claims.ExpiresAt != nil {
		resp["expiresAt"] = claims.ExpiresAt.Time.UTC()
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}
