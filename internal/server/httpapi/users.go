package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/memoir/internal/server/services"
	"github.com/go-chi/chi/v5"
)

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.validate.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.users.Register(r.Context(), services.RegisterInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newUserView(user))
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.validate.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	pair, user, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         newUserView(user),
	})
}

func (s *HTTPServer) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := s.validate.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := s.validate.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.users.Logout(r.Context(), req.RefreshToken); err != nil {
		s.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) verify(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Verify(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.fail(w, r, notFound("verification token", err))
		return
	}

	writeJSON(w, http.StatusOK, newUserView(user))
}

func (s *HTTPServer) currentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.Current(r.Context(), actorFrom(r.Context()))
	if err != nil {
		s.fail(w, r, notFound("user", err))
		return
	}

	writeJSON(w, http.StatusOK, newUserView(user))
}

func (s *HTTPServer) getProfile(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.users.GetProfile(r.Context(), id)
	if err != nil {
		s.fail(w, r, notFound("user", err))
		return
	}

	writeJSON(w, http.StatusOK, newPublicProfileView(user))
}

func (s *HTTPServer) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.users.ProfileEditable(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.fail(w, r, notFound("user", err))
		return
	}

	var req profileUpdateRequest
	if err := s.validate.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	user, err := s.users.UpdateProfile(r.Context(), actorFrom(r.Context()), id, services.ProfileUpdate{
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		s.fail(w, r, notFound("user", err))
		return
	}

	writeJSON(w, http.StatusOK, newUserView(user))
}
