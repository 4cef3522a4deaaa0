package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"isbnscan/internal/metadata"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("isbnscan-test/1.0", 1000, 0)
	c.baseURL = srv.URL
	c.coversURL = "https://covers.openlibrary.org"
	return c
}

const bibKeyBody = `{
	"ISBN:9780140449136": {
		"title": "The Odyssey",
		"publishers": [{"name": "Penguin"}],
		"publish_date": "2003",
		"cover": {"medium": "https://covers.openlibrary.org/b/id/123-M.jpg"},
		"authors": [{"name": "Homer"}],
		"subjects": [{"name": "Epic poetry"}],
		"number_of_pages": 541
	}
}`

func TestClient_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("bib-key hit", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/books", r.URL.Path)
			assert.Equal(t, "ISBN:9780140449136", r.URL.Query().Get("bibkeys"))
			assert.Equal(t, "data", r.URL.Query().Get("jscmd"))
			w.Write([]byte(bibKeyBody))
		})

		m, err := c.Lookup(ctx, "9780140449136")
		require.NoError(t, err)
		require.NotNil(t, m)

		assert.Equal(t, "9780140449136", m.ISBN)
		assert.Equal(t, "The Odyssey", m.Title)
		assert.Equal(t, []string{"Homer"}, m.Authors)
		assert.Equal(t, "Penguin", m.Publisher)
		assert.Equal(t, []string{"Epic poetry"}, m.Categories)
		assert.Equal(t, 541, m.PageCount)
		assert.Equal(t, "https://covers.openlibrary.org/b/id/123-M.jpg", m.ThumbnailURL)
		assert.Equal(t, metadata.SourceOpenLibrary, m.Source)
	})

	t.Run("empty bib-key response falls back to edition", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/books":
				w.Write([]byte(`{}`))
			case "/isbn/9780140449136.json":
				w.Write([]byte(`{
					"title": "The Odyssey",
					"publishers": ["Penguin"],
					"publish_date": "2003",
					"number_of_pages": 541,
					"covers": [8236945],
					"languages": [{"key": "/languages/eng"}]
				}`))
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		})

		m, err := c.Lookup(ctx, "9780140449136")
		require.NoError(t, err)
		require.NotNil(t, m)

		assert.Equal(t, "The Odyssey", m.Title)
		assert.Equal(t, "Penguin", m.Publisher)
		assert.Equal(t, "eng", m.Language)
		assert.Equal(t, "https://covers.openlibrary.org/b/id/8236945-M.jpg", m.ThumbnailURL)
	})

	t.Run("bib-key server error does not sink the edition fallback", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/books":
				w.WriteHeader(http.StatusInternalServerError)
			case "/isbn/9780140449136.json":
				w.Write([]byte(`{"title": "The Odyssey"}`))
			}
		})

		m, err := c.Lookup(ctx, "9780140449136")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "The Odyssey", m.Title)
	})

	t.Run("miss on both endpoints is nil nil", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/books":
				w.Write([]byte(`{}`))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		})

		m, err := c.Lookup(ctx, "9780140449136")
		require.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("edition server error surfaces", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/api/books":
				w.Write([]byte(`{}`))
			default:
				w.WriteHeader(http.StatusInternalServerError)
			}
		})

		m, err := c.Lookup(ctx, "9780140449136")
		require.Error(t, err)
		assert.Nil(t, m)
	})
}

func TestClient_Name(t *testing.T) {
	assert.Equal(t, metadata.SourceOpenLibrary, NewClient("ua", 1, 0).Name())
}
