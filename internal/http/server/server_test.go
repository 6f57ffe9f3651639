package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-api/internal/http/middleware"
	"github.com/aanand-mishra/students-api/internal/storage/sqlite"
	"github.com/aanand-mishra/students-api/internal/types"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := sqlite.New(filepath.Join(t.TempDir(), "students.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(context.Background()) })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewRouter(db, log, nil))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func create(t *testing.T, srv *httptest.Server, body string) types.Student {
	t.Helper()

	resp, data := do(t, srv, http.MethodPost, "/students", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(data))

	var s types.Student
	require.NoError(t, json.Unmarshal(data, &s))
	return s
}

func TestStudentLifecycle(t *testing.T) {
	srv := newTestServer(t)

	created := create(t, srv, `{"name":"John","age":20,"address":{"city":"NYC","country":"USA"}}`)
	require.NotEmpty(t, created.ID)

	path := "/students/" + created.ID

	resp, data := do(t, srv, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched types.Student
	require.NoError(t, json.Unmarshal(data, &fetched))
	assert.Equal(t, created, fetched)

	resp, data = do(t, srv, http.MethodPatch, path, `{"age":21}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, data)

	_, data = do(t, srv, http.MethodGet, path, "")
	require.NoError(t, json.Unmarshal(data, &fetched))
	assert.Equal(t, 21, fetched.Age)
	assert.Equal(t, "John", fetched.Name)
	assert.Equal(t, types.Address{City: "NYC", Country: "USA"}, fetched.Address)

	// Same patch again, same state.
	resp, _ = do(t, srv, http.MethodPatch, path, `{"age":21}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	var again types.Student
	_, data = do(t, srv, http.MethodGet, path, "")
	require.NoError(t, json.Unmarshal(data, &again))
	assert.Equal(t, fetched, again)

	resp, data = do(t, srv, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Student deleted successfully"}`, string(data))

	resp, _ = do(t, srv, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodPatch, path, `{"age":22}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListFilters(t *testing.T) {
	srv := newTestServer(t)

	create(t, srv, `{"name":"John","age":20,"address":{"city":"NYC","country":"USA"}}`)
	create(t, srv, `{"name":"Ana","age":25,"address":{"city":"Lima","country":"Peru"}}`)
	create(t, srv, `{"name":"Bob","age":30,"address":{"city":"Austin","country":"USA"}}`)

	list := func(q string) []string {
		resp, data := do(t, srv, http.MethodGet, "/students"+q, "")
		require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

		var students []types.Student
		require.NoError(t, json.Unmarshal(data, &students))
		names := make([]string, 0, len(students))
		for _, s := range students {
			names = append(names, s.Name)
		}
		return names
	}

	assert.Equal(t, []string{"John", "Ana", "Bob"}, list(""))
	assert.Equal(t, []string{"John", "Bob"}, list("?country=USA"))
	assert.Equal(t, []string{}, list("?country=usa"))
	assert.Equal(t, []string{"Ana", "Bob"}, list("?age=21"))
	assert.Equal(t, []string{"Bob"}, list("?country=USA&age=21"))
	assert.Equal(t, []string{"Ana"}, list("?offset=1&limit=1"))

	for _, q := range []string{"?limit=0", "?limit=1001", "?offset=-1"} {
		resp, _ := do(t, srv, http.MethodGet, "/students"+q, "")
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, q)
	}
}

func TestMalformedIDIsNotFound(t *testing.T) {
	srv := newTestServer(t)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp, _ := do(t, srv, method, "/students/abc", "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, method)
	}
	resp, _ := do(t, srv, http.MethodPatch, "/students/abc", `{"age":1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateRejectsNegativeAgeWithoutWriting(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPost, "/students", `{"name":"John","age":-1,"address":{"city":"NYC","country":"USA"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	_, data := do(t, srv, http.MethodGet, "/students", "")
	assert.JSONEq(t, `[]`, string(data))
}

func TestCreateRejectsTrailingDataWithoutWriting(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, srv, http.MethodPost, "/students",
		`{"name":"John","age":20,"address":{"city":"NYC","country":"USA"}} {"oops"`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(data), "is not valid JSON")

	_, data = do(t, srv, http.MethodGet, "/students", "")
	assert.JSONEq(t, `[]`, string(data))
}

func TestHealthAndRequestID(t *testing.T) {
	srv := newTestServer(t)

	resp, data := do(t, srv, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(data))
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))
}

func TestUnknownMethodIsRejected(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, srv, http.MethodPut, "/students/65f1c0d2e4b0a1a2b3c4d5e6", `{"age":1}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
