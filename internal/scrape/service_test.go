package scrape

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bankinfo/internal"
	"bankinfo/internal/branches"
	"bankinfo/internal/export"
	"bankinfo/internal/storage"
)

var fakePages = map[string]string{
	"/routing-numbers/royal-trust/09980-001/": page("Branch: Downtown, Address: 1 King St W, Toronto, ON."),
	"/routing-numbers/royal-trust/00236-003/": page("Branch: Transit 236, Phone: 555-0100"),
	"/routing-numbers/royal-trust/00267-819/": page("Branch: 12, Address: Main St, Halifax"),
}

func newTestService(t *testing.T) (*Service, *storage.DB, *[]string) {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	requested := []string{}
	svc := NewService(db, testConfig())
	svc.client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			requested = append(requested, r.URL.Path)
			body, ok := fakePages[r.URL.Path]
			if !ok {
				return htmlResponse(http.StatusNotFound, "not found"), nil
			}
			return htmlResponse(http.StatusOK, body), nil
		}),
	}
	return svc, db, &requested
}

func TestRunContinuesOnError(t *testing.T) {
	svc, db, requested := newTestService(t)
	var out bytes.Buffer

	numbers := []string{"00109980", "1234", "00300236", "81900267"}
	summary, err := svc.Run(context.Background(), "test", numbers, export.NewCSVWriter(&out))
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 2, summary.Written)
	require.Len(t, summary.Failures, 2)
	assert.Equal(t, "1234", summary.Failures[0].Number)
	assert.Equal(t, "00300236", summary.Failures[1].Number)

	assert.Equal(t,
		"\"001\",\"09980\",\"Downtown, 1 King St W, Toronto, ON\"\n"+
			"\"819\",\"00267\",\"12 Main St, Halifax\"\n",
		out.String())

	// the malformed number never reaches the network
	assert.Len(t, *requested, 3)

	rows, err := db.ListAddresses(summary.RunID)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, internal.AddressOK, rows[0].Status)
	assert.Equal(t, "Downtown", rows[0].BranchName)
	assert.Equal(t, internal.AddressFailed, rows[2].Status)
	assert.Contains(t, *rows[2].Error, "00300236")

	runs, err := db.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Counts["failed"])

	latest, err := db.ResolveRunID("latest")
	require.NoError(t, err)
	assert.Equal(t, summary.RunID, latest)
}

func TestRunFailFast(t *testing.T) {
	svc, _, requested := newTestService(t)
	svc.FailFast = true
	var out bytes.Buffer

	summary, err := svc.Run(context.Background(), "test", []string{"00109980", "00300236", "81900267"}, export.NewCSVWriter(&out))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAddress))
	assert.Contains(t, err.Error(), "00300236")
	assert.Equal(t, 1, summary.Written)
	assert.Len(t, *requested, 2)
}

func TestRunFailFastInvalidNumber(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.FailFast = true

	_, err := svc.Run(context.Background(), "test", []string{"1234"}, export.NewCSVWriter(&bytes.Buffer{}))
	assert.ErrorIs(t, err, branches.ErrInvalidBranchNumber)
}

func TestRunCancelled(t *testing.T) {
	svc, _, requested := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx, "test", []string{"00109980"}, export.NewCSVWriter(&bytes.Buffer{}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, *requested)
}

func TestScrapeOneNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	row, err := svc.ScrapeOne(context.Background(), "run", "99999999")
	require.Error(t, err)
	assert.Equal(t, internal.AddressFailed, row.Status)
	assert.Equal(t, "http://example.test/routing-numbers/royal-trust/99999-999/", row.URL)
	assert.Contains(t, err.Error(), "status=404")
}
