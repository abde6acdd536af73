package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/memoir/internal/server/models"
	"github.com/dmitrijs2005/memoir/internal/server/services"
)

func (s *HTTPServer) listCategories(w http.ResponseWriter, r *http.Request) {
	list, err := s.categories.ListMine(r.Context(), actorFrom(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(list, newCategoryView))
}

func (s *HTTPServer) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	c, err := s.categories.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, notFound("category", err))
		return
	}

	writeJSON(w, http.StatusOK, newCategoryView(c))
}

func (s *HTTPServer) createCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryCreateRequest
	if err := s.validate.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	c, err := s.categories.Create(r.Context(), actorFrom(r.Context()), services.CategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newCategoryView(c))
}

func (s *HTTPServer) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if _, err := s.categories.Editable(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.fail(w, r, notFound("category", err))
		return
	}

	var req categoryUpdateRequest
	if err := s.validate.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	c, err := s.categories.Update(r.Context(), actorFrom(r.Context()), id, models.CategoryPatch{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.fail(w, r, notFound("category", err))
		return
	}

	writeJSON(w, http.StatusOK, newCategoryView(c))
}

func (s *HTTPServer) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.categories.Delete(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.fail(w, r, notFound("category", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
