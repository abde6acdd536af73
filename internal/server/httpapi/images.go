package httpapi

import "net/http"

func (s *HTTPServer) presignImage(w http.ResponseWriter, r *http.Request) {
	var req imageUploadRequest
	if err := s.validate.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	up, err := s.images.PresignUpload(r.Context(), actorFrom(r.Context()), req.ContentType)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, imageUploadResponse{
		UploadURL: up.UploadURL,
		ImageURL:  up.ImageURL,
		ExpiresAt: up.ExpiresAt,
	})
}
