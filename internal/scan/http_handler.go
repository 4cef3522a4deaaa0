package scan

import (
	"encoding/json"
	"errors"
	"net/http"

	"isbnscan/internal/httpx"
)

type HTTPHandler struct {
	session *Session
}

func NewHTTPHandler(session *Session) *HTTPHandler {
	return &HTTPHandler{session: session}
}

type scanRequest struct {
	Text string `json:"text"`
}

// Scan handles POST /scan. With ?fresh=true the session's detected
// set is cleared first, so the whole page is reported again.
func (h *HTTPHandler) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON with a text field", nil)
		return
	}

	fresh := r.URL.Query().Get("fresh") == "true"

	// The session applies fresh inside its reentrancy guard, so a
	// trigger that gets dropped cannot wipe the in-progress scan's
	// detections.
	results, err := h.session.Scan(r.Context(), req.Text, fresh)
	if errors.Is(err, ErrScanInProgress) {
		httpx.JSONError(w, http.StatusConflict, "SCAN_IN_PROGRESS", "A scan is already running", nil)
		return
	}

	isbns := make([]string, len(results))
	for i, res := range results {
		isbns[i] = res.ISBN
	}

	httpx.JSONSuccess(w, map[string]any{
		"isbns":   isbns,
		"results": results,
	}, map[string]any{
		"detected_total": len(h.session.Detected()),
	})
}

// Detected handles GET /scan/detected
func (h *HTTPHandler) Detected(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, map[string]any{
		"isbns": h.session.Detected(),
	}, nil)
}
