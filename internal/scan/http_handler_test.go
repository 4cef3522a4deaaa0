package scan

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postScan(h *HTTPHandler, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Scan(rec, req)
	return rec
}

func TestHTTPHandler_Scan(t *testing.T) {
	t.Run("scans and reports detected isbns", func(t *testing.T) {
		h := NewHTTPHandler(NewSession(newCountingResolver()))
		rec := postScan(h, "/scan", `{"text": "Books: 9780134685991 and 0306406152"}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Success bool `json:"success"`
			Data    struct {
				ISBNs   []string `json:"isbns"`
				Results []Result `json:"results"`
			} `json:"data"`
			Meta struct {
				DetectedTotal int `json:"detected_total"`
			} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, []string{"9780134685991", "0306406152"}, body.Data.ISBNs)
		require.Len(t, body.Data.Results, 2)
		assert.Equal(t, "Some Book", body.Data.Results[0].Book.Title)
		assert.Equal(t, 2, body.Meta.DetectedTotal)
	})

	t.Run("repeat scan reports only new isbns but full total", func(t *testing.T) {
		h := NewHTTPHandler(NewSession(newCountingResolver()))
		postScan(h, "/scan", `{"text": "9780134685991"}`)
		rec := postScan(h, "/scan", `{"text": "9780134685991 and 0306406152"}`)

		var body struct {
			Data struct {
				ISBNs []string `json:"isbns"`
			} `json:"data"`
			Meta struct {
				DetectedTotal int `json:"detected_total"`
			} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, []string{"0306406152"}, body.Data.ISBNs)
		assert.Equal(t, 2, body.Meta.DetectedTotal)
	})

	t.Run("fresh query clears the session first", func(t *testing.T) {
		h := NewHTTPHandler(NewSession(newCountingResolver()))
		postScan(h, "/scan", `{"text": "9780134685991"}`)
		rec := postScan(h, "/scan?fresh=true", `{"text": "9780134685991"}`)

		var body struct {
			Data struct {
				ISBNs []string `json:"isbns"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, []string{"9780134685991"}, body.Data.ISBNs)
	})

	t.Run("malformed body is a 400", func(t *testing.T) {
		h := NewHTTPHandler(NewSession(newCountingResolver()))
		rec := postScan(h, "/scan", `{"text": `)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "INVALID_BODY", body.Error.Code)
	})

	t.Run("dropped fresh scan keeps the running scan's detections", func(t *testing.T) {
		rs := &blockingResolver{started: make(chan struct{}), release: make(chan struct{})}
		session := NewSession(rs)
		h := NewHTTPHandler(session)

		done := make(chan struct{})
		go func() {
			postScan(h, "/scan", `{"text": "9780134685991"}`)
			close(done)
		}()
		<-rs.started

		rec := postScan(h, "/scan?fresh=true", `{"text": "0306406152"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)

		close(rs.release)
		<-done

		assert.Equal(t, []string{"9780134685991"}, session.Detected())
	})

	t.Run("concurrent scan is a 409", func(t *testing.T) {
		rs := &blockingResolver{started: make(chan struct{}), release: make(chan struct{})}
		h := NewHTTPHandler(NewSession(rs))

		done := make(chan struct{})
		go func() {
			postScan(h, "/scan", `{"text": "9780134685991"}`)
			close(done)
		}()
		<-rs.started

		rec := postScan(h, "/scan", `{"text": "0306406152"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)

		close(rs.release)
		<-done
	})
}

func TestHTTPHandler_Detected(t *testing.T) {
	h := NewHTTPHandler(NewSession(newCountingResolver()))
	postScan(h, "/scan", `{"text": "9780134685991 then 0306406152"}`)

	req := httptest.NewRequest(http.MethodGet, "/scan/detected", nil)
	rec := httptest.NewRecorder()
	h.Detected(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data struct {
			ISBNs []string `json:"isbns"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"9780134685991", "0306406152"}, body.Data.ISBNs)
}
