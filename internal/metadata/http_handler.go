package metadata

import (
	"context"
	"net/http"

	"isbnscan/internal/httpx"
	"isbnscan/internal/isbn"
)

// BookResolver is what the handler needs from the resolution pipeline.
type BookResolver interface {
	Resolve(ctx context.Context, isbn string) BookMetadata
}

type HTTPHandler struct {
	resolver BookResolver
}

func NewHTTPHandler(resolver BookResolver) *HTTPHandler {
	return &HTTPHandler{resolver: resolver}
}

type bookResponse struct {
	BookMetadata
	Formatted string `json:"formatted"`
	SearchURL string `json:"search_url"`
}

// GetByISBN handles GET /books/{isbn}
func (h *HTTPHandler) GetByISBN(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("isbn")
	if !isbn.IsValid(raw) {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_ISBN", "Not a checksum-valid ISBN-10 or ISBN-13", nil)
		return
	}
	id := isbn.Normalize(raw)

	m := h.resolver.Resolve(r.Context(), id)
	if !m.Found() {
		httpx.JSONError(w, http.StatusNotFound, "NOT_FOUND", "No metadata available for this ISBN", nil)
		return
	}

	httpx.JSONSuccess(w, bookResponse{
		BookMetadata: m,
		Formatted:    isbn.Format(id),
		SearchURL:    isbn.SearchURL(id),
	}, nil)
}
