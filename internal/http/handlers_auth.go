package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	domainauth "github.com/target/dash-console/internal/domain/auth"
	apperrors "github.com/target/dash-console/internal/errors"
	"github.com/target/dash-console/internal/http/validation"
	"github.com/target/dash-console/internal/service"
)

// Messages shown for rejected credentials. The remote reason is only logged.
const (
	msgBadCredentials = "incorrect email or password"
	msgBadPassword    = "incorrect password"
)

// AuthHandlers provides HTTP handlers for the session gateway.
type AuthHandlers struct {
	Svc    *service.AuthService
	Logger *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil {
		return loggerOr(h.Logger)
	}
	return slog.Default()
}

type sessionResponse struct {
	Authenticated bool                    `json:"authenticated"`
	User          *domainauth.CurrentUser `json:"user,omitempty"`
}

// SignIn handles POST /auth/sign-in.
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var creds domainauth.Credentials
	if !DecodeJSON(w, r, &creds) {
		return
	}

	user, err := h.Svc.SignIn(r.Context(), creds)
	if err != nil {
		h.writeCredentialError(w, r, err, msgBadCredentials)
		return
	}
	WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: user})
}

// SignInWithToken handles POST /auth/sign-in-with-token.
func (h *AuthHandlers) SignInWithToken(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Svc.SignInWithToken(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: ok, User: h.Svc.CurrentUser()})
}

// SignOut handles POST /auth/sign-out. It always succeeds.
func (h *AuthHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	h.Svc.SignOut(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Check handles GET /auth/check.
func (h *AuthHandlers) Check(w http.ResponseWriter, r *http.Request) {
	ok, err := h.Svc.Check(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}
	WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: ok})
}

// Status handles GET /auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, h.Svc.Snapshot())
}

// SignUp handles POST /auth/sign-up.
func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var in domainauth.SignUpInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	err := validation.New().
		Validate("name", in.Name, validation.Required("Name", 120)).
		Validate("email", in.Email, validation.Email("Email")).
		Validate("password", in.Password, validation.MinLength("Password", 6)).
		Validate("company", in.Company, validation.Optional("Company", 120)).
		Err()
	if err == nil {
		err = h.Svc.SignUp(r.Context(), in)
	}
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ForgotPassword handles POST /auth/forgot-password.
func (h *AuthHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	err := validation.New().Validate("email", req.Email, validation.Email("Email")).Err()
	if err == nil {
		err = h.Svc.ForgotPassword(r.Context(), req.Email)
	}
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ResetPassword handles POST /auth/reset-password.
func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in domainauth.ResetPasswordInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	err := validation.New().Validate("password", in.Password, validation.MinLength("Password", 6)).Err()
	if err == nil {
		err = h.Svc.ResetPassword(r.Context(), in)
	}
	if err != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnlockSession handles POST /auth/unlock-session.
func (h *AuthHandlers) UnlockSession(w http.ResponseWriter, r *http.Request) {
	var creds domainauth.Credentials
	if !DecodeJSON(w, r, &creds) {
		return
	}
	if err := h.Svc.UnlockSession(r.Context(), creds); err != nil {
		h.writeCredentialError(w, r, err, msgBadPassword)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeCredentialError hides the remote reason behind a generic message.
// Local state errors (validation, already signed in) keep their own responses.
func (h *AuthHandlers) writeCredentialError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if !service.IsCredentialError(err) || apperrors.IsDecryption(err) ||
		apperrors.GetStatus(err) >= http.StatusInternalServerError || r.Context().Err() != nil {
		writeServiceError(w, r, h.logger(), err)
		return
	}
	h.logger().WarnContext(r.Context(), "credentials rejected", "path", r.URL.Path, "error", err)
	WriteError(w, ErrorParams{Code: http.StatusUnauthorized, ErrCode: "invalid_credentials", Err: errors.New(msg)})
}
