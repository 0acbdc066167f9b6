package records

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDate(t *testing.T, tag string) time.Time {
	t.Helper()
	date, err := time.Parse(DateTag, tag)
	require.NoError(t, err)
	return date
}

func recordServer(t *testing.T, hits *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hits++
		assert.Equal(t, http.MethodGet, r.Method)
		fmt.Fprintf(w, `{"history": {"date": %q, "observations": [{"tempm": "21.5"}, {"tempm": "20.1"}]}}`, r.URL.Path)
	}))
}

func TestClientHistory(t *testing.T) {
	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		fmt.Fprint(w, `{"history": {"observations": []}}`)
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL:  server.URL,
		APIKey:   "secret",
		Location: "NL/Amsterdam",
	}, nil)

	record, err := client.History(context.Background(), testDate(t, "20260114"))
	require.NoError(t, err)
	assert.Equal(t, "/api/secret/history_20260114/q/NL/Amsterdam.json", requested)
	assert.Contains(t, record, "history")
}

func TestClientHistoryErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/k/history_20260101/q/loc.json":
			w.WriteHeader(http.StatusNotFound)
		case "/api/k/history_20260102/q/loc.json":
			fmt.Fprint(w, `{}`)
		default:
			fmt.Fprint(w, `not json`)
		}
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIKey: "k", Location: "loc"}, nil)
	ctx := context.Background()

	_, err := client.History(ctx, testDate(t, "20260101"))
	assert.ErrorContains(t, err, "status 404")

	_, err = client.History(ctx, testDate(t, "20260102"))
	assert.ErrorContains(t, err, "empty record")

	_, err = client.History(ctx, testDate(t, "20260103"))
	assert.ErrorContains(t, err, "decoding record")
}

func TestArchiveRoundTrip(t *testing.T) {
	archive, err := NewArchive(t.TempDir(), nil)
	require.NoError(t, err)

	date := testDate(t, "20260110")
	record := map[string]interface{}{"history": map[string]interface{}{"date": "20260110"}}

	_, ok := archive.Get(date)
	assert.False(t, ok, "empty archive must miss")

	require.NoError(t, archive.Put(date, record))
	got, ok := archive.Get(date)
	require.True(t, ok)
	assert.Equal(t, record, got)

	err = archive.Put(date, map[string]interface{}{})
	assert.ErrorContains(t, err, "empty record")
}

func TestArchiveDates(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir, nil)
	require.NoError(t, err)

	for _, tag := range []string{"20260112", "20260110", "20260111"} {
		require.NoError(t, archive.Put(testDate(t, tag), map[string]interface{}{"d": tag}))
	}
	// Stray files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "latest.json"), []byte("{}"), 0644))

	dates, err := archive.Dates()
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, "20260110", dates[0].Format(DateTag))
	assert.Equal(t, "20260112", dates[2].Format(DateTag))
}

func TestArchiveGetSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir, nil)
	require.NoError(t, err)

	date := testDate(t, "20260110")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260110.json"), []byte("{broken"), 0644))
	_, ok := archive.Get(date)
	assert.False(t, ok)
}

func TestStoreRecordPrefersArchive(t *testing.T) {
	hits := 0
	server := recordServer(t, &hits)
	defer server.Close()

	archive, err := NewArchive(t.TempDir(), nil)
	require.NoError(t, err)
	client := NewClient(Config{BaseURL: server.URL, APIKey: "k", Location: "loc"}, nil)
	store := NewStore(client, archive)
	date := testDate(t, "20260110")

	first, err := store.Record(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, 1, hits)

	second, err := store.Record(context.Background(), date)
	require.NoError(t, err)
	assert.Equal(t, 1, hits, "second read must come from the archive")
	assert.Equal(t, first, second)
}

func TestStoreBackfill(t *testing.T) {
	hits := 0
	server := recordServer(t, &hits)
	defer server.Close()

	archive, err := NewArchive(t.TempDir(), nil)
	require.NoError(t, err)
	require.NoError(t, archive.Put(testDate(t, "20260110"), map[string]interface{}{"d": "seed"}))

	client := NewClient(Config{BaseURL: server.URL, APIKey: "k", Location: "loc"}, nil)
	store := NewStore(client, archive)

	ticks := 0
	fetched, err := store.Backfill(context.Background(), 3, func() { ticks++ })
	require.NoError(t, err)
	assert.Equal(t, 3, fetched)
	assert.Equal(t, 3, ticks)

	dates, err := archive.Dates()
	require.NoError(t, err)
	require.Len(t, dates, 4)
	assert.Equal(t, "20260107", dates[0].Format(DateTag))
}

func TestStoreBackfillHonorsContext(t *testing.T) {
	archive, err := NewArchive(t.TempDir(), nil)
	require.NoError(t, err)
	client := NewClient(Config{BaseURL: "http://127.0.0.1:0", APIKey: "k", Location: "loc"}, nil)
	store := NewStore(client, archive)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetched, err := store.Backfill(ctx, 5, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fetched)
}

func TestObservations(t *testing.T) {
	record := map[string]interface{}{
		"history": map[string]interface{}{
			"observations": []interface{}{
				map[string]interface{}{"tempm": "21.5"},
				map[string]interface{}{"tempm": "20.1"},
			},
		},
	}
	obs, err := Observations(record)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, "21.5", obs[0]["tempm"])

	_, err = Observations(map[string]interface{}{"other": 1})
	assert.ErrorContains(t, err, "history.observations")
}
