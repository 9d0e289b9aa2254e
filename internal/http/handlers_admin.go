package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
	"fintrack/internal/validate"
)

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit, res := validate.UsersQuery(q.Get("page"), q.Get("limit"), q.Get("role"))
	if !res.IsValid {
		fail(w, http.StatusBadRequest, res.Message)
		return
	}

	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	// The role filter is always applied: any value other than "admin"
	// selects regular users.
	users, total, err := s.repo.ListUsers(r.Context(), storage.UsersFilter{
		Admins:    q.Get("role") == "admin",
		Ascending: core.Ascending(q.Get("sort")),
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	if total == 0 {
		fail(w, http.StatusNotFound, "No users found")
		return
	}
	totalPages, overflow := pageWindow(total, page, limit)
	if overflow {
		fail(w, http.StatusNotFound, "No users found for this page")
		return
	}

	succeed(w, http.StatusOK, "Users fetched successfully", envelope{
		"totalPages":    totalPages,
		"page":          page,
		"numberOfUsers": total,
		"users":         users,
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := s.repo.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "User not found")
			return
		}
		internalError(w, err)
		return
	}
	succeed(w, http.StatusOK, "User retrieved successfully", envelope{"user": user})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "User not found")
		return
	}

	if err := s.repo.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "User not found")
			return
		}
		internalError(w, err)
		return
	}

	s.invalidateStats()
	s.logger.InfoContext(r.Context(), "Admin deleted user",
		log.FieldUserID, id,
		log.FieldOperation, log.OpDelete)

	succeed(w, http.StatusOK, "The user deleted successfully", nil)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	if res := validate.UserUpdate(payload.Username, payload.Email); !res.IsValid {
		fail(w, http.StatusBadRequest, res.Message)
		return
	}

	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "The User don't exist ")
		return
	}

	user, err := s.repo.UpdateUser(r.Context(), id, payload.Username, payload.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "The User don't exist ")
			return
		}
		internalError(w, err)
		return
	}
	succeed(w, http.StatusOK, "User updated successfully", envelope{"user": user})
}

func (s *Server) handleToggleUserRole(w http.ResponseWriter, r *http.Request) {
	id, valid := pathID(r)
	if !valid {
		fail(w, http.StatusNotFound, "The User don't exist ")
		return
	}

	user, err := s.repo.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			fail(w, http.StatusNotFound, "The User don't exist ")
			return
		}
		internalError(w, err)
		return
	}

	updated, err := s.repo.SetUserAdmin(r.Context(), id, !user.IsAdmin)
	if err != nil {
		internalError(w, err)
		return
	}

	s.invalidateStats()
	s.logger.InfoContext(r.Context(), "Admin toggled user role",
		log.FieldUserID, id,
		"isAdmin", updated.IsAdmin)

	succeed(w, http.StatusOK, "User updated successfully", envelope{"user": updated})
}

const statsCacheKey = "admin_stats"

// handleAdminStats returns the global usage snapshot. Unlike the other admin
// responses the payload has no envelope fields. The snapshot is cached
// briefly and invalidated on every mutation that would change it.
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	if stats, found := s.statsCache.Get(statsCacheKey); found {
		writeJSON(w, http.StatusOK, stats)
		return
	}

	stats, err := s.repo.AdminStats(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	s.statsCache.Set(statsCacheKey, stats)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) invalidateStats() {
	s.statsCache.Delete(statsCacheKey)
}

func (s *Server) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	role := r.URL.Query().Get("role")
	if role != "" && !core.OneOf(role, core.Roles) {
		fail(w, http.StatusBadRequest, "the role must be one of the following admin, user")
		return
	}

	q := r.URL.Query().Get("q")
	if q == "" {
		fail(w, http.StatusBadRequest, "the query parameter is require for searching")
		return
	}

	users, err := s.repo.SearchUsers(r.Context(), q, role)
	if err != nil {
		internalError(w, err)
		return
	}
	if len(users) == 0 {
		fail(w, http.StatusNotFound, "your search term "+q+" doesn't exist in the users")
		return
	}
	succeed(w, http.StatusOK, "", envelope{"numberOfUsers": len(users), "users": users})
}
