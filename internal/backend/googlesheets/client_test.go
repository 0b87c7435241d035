package googlesheets_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"optisheet/internal/backend/googlesheets"
	"optisheet/internal/service"
)

type fakeSheetsAPI struct {
	mu      sync.Mutex
	status  int
	updates []string
	bodies  []string
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		fmt.Fprintf(w, `{"error":{"code":%d,"message":"denied","status":"PERMISSION_DENIED"}}`, f.status)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/v4/spreadsheets/abc123":
		io.WriteString(w, `{"properties":{"title":"Reviews"},"sheets":[{"properties":{"title":"Sheet1"}},{"properties":{"title":"Other"}}]}`)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/abc123/values/"):
		io.WriteString(w, `{"range":"Sheet1!A1:B3","majorDimension":"ROWS","values":[["text","result"],["hello"],["bye","No"]]}`)
	case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/abc123/values/"):
		body, _ := io.ReadAll(r.Body)
		f.updates = append(f.updates, strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/abc123/values/")+"?"+r.URL.Query().Get("valueInputOption"))
		f.bodies = append(f.bodies, string(body))
		io.WriteString(w, `{"updatedCells":1}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":{"code":404,"message":"Requested entity was not found.","status":"NOT_FOUND"}}`)
	}
}

func newTestClient(t *testing.T, api http.Handler) *googlesheets.Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := googlesheets.NewWithHTTPClient(context.Background(), srv.Client(), 0, option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return c
}

func TestOpenReadAndUpdate(t *testing.T) {
	api := &fakeSheetsAPI{}
	c := newTestClient(t, api)
	ctx := context.Background()

	sheet, err := c.Open(ctx, "https://docs.google.com/spreadsheets/d/abc123/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "Reviews", sheet.Title())

	values, err := sheet.Values(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"text", "result"}, {"hello"}, {"bye", "No"}}, values)

	require.NoError(t, sheet.UpdateCell(ctx, service.Cell{Row: 2, Col: 2}, "Yes"))

	require.Len(t, api.updates, 1)
	assert.Equal(t, "'Sheet1'!B2?USER_ENTERED", api.updates[0])

	var vr struct {
		Values [][]string `json:"values"`
	}
	require.NoError(t, json.Unmarshal([]byte(api.bodies[0]), &vr))
	assert.Equal(t, [][]string{{"Yes"}}, vr.Values)
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()

	c := newTestClient(t, &fakeSheetsAPI{})
	_, err := c.Open(ctx, "https://docs.google.com/spreadsheets/d/missing/edit")
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = c.Open(ctx, "not a url")
	assert.ErrorIs(t, err, service.ErrNotFound)

	denied := newTestClient(t, &fakeSheetsAPI{status: http.StatusForbidden})
	_, err = denied.Open(ctx, "https://docs.google.com/spreadsheets/d/abc123/edit")
	assert.ErrorIs(t, err, service.ErrAuth)
}

func TestNewWithBadCredentials(t *testing.T) {
	_, err := googlesheets.New(context.Background(), "/does/not/exist.json", 0)
	assert.ErrorIs(t, err, service.ErrAuth)
}

func TestSpreadsheetID(t *testing.T) {
	id, err := googlesheets.SpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-d_E/edit?usp=sharing")
	require.NoError(t, err)
	assert.Equal(t, "1AbC-d_E", id)

	_, err = googlesheets.SpreadsheetID("https://example.com/file.csv")
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestA1(t *testing.T) {
	tests := []struct {
		tab  string
		cell service.Cell
		want string
	}{
		{"Sheet1", service.Cell{Row: 2, Col: 1}, "'Sheet1'!A2"},
		{"Sheet1", service.Cell{Row: 10, Col: 26}, "'Sheet1'!Z10"},
		{"Sheet1", service.Cell{Row: 3, Col: 27}, "'Sheet1'!AA3"},
		{"Bob's", service.Cell{Row: 2, Col: 703}, "'Bob''s'!AAA2"},
	}
	for _, tt := range tests {
		got, err := googlesheets.A1(tt.tab, tt.cell)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := googlesheets.A1("Sheet1", service.Cell{Row: 0, Col: 1})
	assert.Error(t, err)
}
