package httpapi

import (
	"net/http"

	"tasklane.dev/internal/audit"
	"tasklane.dev/internal/auth"
	"tasklane.dev/internal/obs"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type publicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type registerResponse struct {
	Status       int        `json:"status"`
	Message      string     `json:"message"`
	Data         publicUser `json:"data"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

type loginResponse struct {
	AccessToken string     `json:"accessToken"`
	User        publicUser `json:"user"`
}

type statusResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	sess, err := a.auth.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	obs.RecordAuthEvent("register", outcome(err))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{"user_id": sess.User.ID})

	writeJSON(w, http.StatusCreated, registerResponse{
		Status:  http.StatusCreated,
		Message: "Successfully registered a user!",
		Data: publicUser{
			ID:    sess.User.ID,
			Name:  sess.User.Name,
			Email: sess.User.Email,
		},
		AccessToken:  sess.Tokens.AccessToken,
		RefreshToken: sess.Tokens.RefreshToken,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	sess, err := a.auth.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	obs.RecordAuthEvent("login", outcome(err))
	if err != nil {
		_ = audit.LogEvent(r.Context(), "auth.login.failed", nil)
		writeErr(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{"user_id": sess.User.ID})

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: sess.Tokens.AccessToken,
		User: publicUser{
			ID:    sess.User.ID,
			Name:  sess.User.Name,
			Email: sess.User.Email,
			Role:  string(sess.User.Role),
		},
	})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.TokenFromContext(r.Context())
	err := a.auth.Logout(r.Context(), token)
	obs.RecordAuthEvent("logout", outcome(err))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.logout", nil)
	writeJSON(w, http.StatusOK, statusResponse{
		Status:  http.StatusOK,
		Message: "Successfully logged out",
	})
}
