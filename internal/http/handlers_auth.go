package http

import (
	"errors"
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/validate"
)

type credentialsPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionUser is the identity slice returned by sign-up and log-in.
func sessionUser(u core.User) envelope {
	return envelope{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"isAdmin":  u.IsAdmin,
	}
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	if res := validate.SignUp(payload.Username, payload.Email, payload.Password); !res.IsValid {
		fail(w, http.StatusBadRequest, res.Message)
		return
	}

	if _, err := s.repo.GetUserByEmail(r.Context(), payload.Email); err == nil {
		fail(w, http.StatusConflict, "User already exists")
		return
	} else if !errors.Is(err, storage.ErrNotFound) {
		internalError(w, err)
		return
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		internalError(w, err)
		return
	}

	user, err := s.repo.CreateUser(r.Context(), payload.Username, payload.Email, hash)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			fail(w, http.StatusConflict, "User already exists")
			return
		}
		internalError(w, err)
		return
	}

	token, err := s.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		internalError(w, err)
		return
	}
	http.SetCookie(w, auth.SessionCookie(token, s.production))

	s.invalidateStats()
	s.logger.InfoContext(r.Context(), "User signed up",
		log.FieldUserID, user.ID,
		log.FieldOperation, log.OpCreate)

	succeed(w, http.StatusCreated, "User created successfully", envelope{"user": sessionUser(user)})
}

func (s *Server) handleLogIn(w http.ResponseWriter, r *http.Request) {
	var payload credentialsPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	if res := validate.LogIn(payload.Email, payload.Password); !res.IsValid {
		fail(w, http.StatusBadRequest, res.Message)
		return
	}

	user, err := s.repo.GetUserByEmail(r.Context(), payload.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "User not found")
			return
		}
		internalError(w, err)
		return
	}

	if !auth.CheckPassword(payload.Password, user.PasswordHash) {
		fail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.tokens.Issue(user.ID, user.IsAdmin)
	if err != nil {
		internalError(w, err)
		return
	}
	http.SetCookie(w, auth.SessionCookie(token, s.production))

	s.logger.InfoContext(r.Context(), "User logged in", log.FieldUserID, user.ID)

	succeed(w, http.StatusOK, "Logged in successfully", envelope{"user": sessionUser(user)})
}

func (s *Server) handleLogOut(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearSessionCookie(s.production))
	succeed(w, http.StatusOK, "Logged out successfully", nil)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.repo.GetUserByID(r.Context(), sessionClaims(r).UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "User not found")
			return
		}
		internalError(w, err)
		return
	}
	succeed(w, http.StatusOK, "", envelope{"user": user})
}
