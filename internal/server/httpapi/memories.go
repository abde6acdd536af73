package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/memoir/internal/server/models"
	"github.com/dmitrijs2005/memoir/internal/server/services"
)

func (s *HTTPServer) listMemories(w http.ResponseWriter, r *http.Request) {
	q := services.MemoryQuery{Since: r.URL.Query().Get("since")}

	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		id, err := parseID("categoryId", raw)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		q.CategoryID = &id
	}

	list, err := s.memories.ListMine(r.Context(), actorFrom(r.Context()), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(list, newMemoryView))
}

func (s *HTTPServer) listPublicMemories(w http.ResponseWriter, r *http.Request) {
	list, err := s.memories.ListPublic(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, mapSlice(list, newMemoryView))
}

func (s *HTTPServer) getMemory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	m, err := s.memories.Get(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		s.fail(w, r, notFound("memory", err))
		return
	}

	writeJSON(w, http.StatusOK, newMemoryView(m))
}

func (s *HTTPServer) createMemory(w http.ResponseWriter, r *http.Request) {
	var req memoryCreateRequest
	if err := s.validate.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	m, err := s.memories.Create(r.Context(), actorFrom(r.Context()), services.MemoryInput{
		Title:      req.Title,
		Content:    req.Content,
		ImageURL:   req.ImageURL,
		CategoryID: req.CategoryID,
		Visibility: req.Visibility,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newMemoryView(m))
}

func (s *HTTPServer) updateMemory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if _, err := s.memories.Editable(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.fail(w, r, notFound("memory", err))
		return
	}

	var req memoryUpdateRequest
	if err := s.validate.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.ImageURL.Value != nil {
		if err := s.validate.checkVar("imageUrl", *req.ImageURL.Value, "url"); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if req.CategoryID.Value != nil {
		if err := s.validate.checkVar("categoryId", *req.CategoryID.Value, "gt=0"); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	m, err := s.memories.Update(r.Context(), actorFrom(r.Context()), id, models.MemoryPatch{
		Title:      req.Title,
		Content:    req.Content,
		ImageURL:   req.ImageURL.patch(),
		CategoryID: req.CategoryID.patch(),
		Visibility: req.Visibility,
	})
	if err != nil {
		s.fail(w, r, notFound("memory", err))
		return
	}

	writeJSON(w, http.StatusOK, newMemoryView(m))
}

func (s *HTTPServer) deleteMemory(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.memories.Delete(r.Context(), actorFrom(r.Context()), id); err != nil {
		s.fail(w, r, notFound("memory", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
