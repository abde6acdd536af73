package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/memoir/internal/server/services"
)

func (s *HTTPServer) adminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context(), actorFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(users, newUserView))
}

func (s *HTTPServer) adminUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.users.AdminEditable(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.fail(w, r, notFound("user", err))
		return
	}

	var req adminUserUpdateRequest
	if err := s.validate.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.users.AdminUpdateUser(r.Context(), actorFrom(r.Context()), id, services.AdminUserUpdate{
		Role:       req.Role,
		IsVerified: req.IsVerified,
	})
	if err != nil {
		s.fail(w, r, notFound("user", err))
		return
	}

	writeJSON(w, http.StatusOK, newUserView(user))
}

func (s *HTTPServer) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.users.AdminDeleteUser(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.fail(w, r, notFound("user", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
