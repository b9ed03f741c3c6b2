package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goapply/goapply/internal/types"
)

func records(n int) []types.ApplicationRecord {
	var out []types.ApplicationRecord
	for i := 0; i < n; i++ {
		out = append(out, types.ApplicationRecord{
			RunID:     "run-1",
			JobTitle:  "Backend Engineer " + string(rune('A'+i)),
			Company:   "R&D <Labs>",
			Location:  "Remote",
			Platform:  types.PlatformLinkedIn,
			AppliedAt: time.Date(2024, 5, 1, 10, i, 0, 0, time.UTC),
			SourceURL: "https://www.linkedin.com/jobs/view/" + string(rune('1'+i)),
			Status:    types.StatusApplied,
		})
	}
	return out
}

func feed(w Writer, recs []types.ApplicationRecord) {
	ch := make(chan types.ApplicationRecord, len(recs))
	for _, r := range recs {
		ch <- r
	}
	close(ch)
	w.Write(ch)
}

func TestNewWriter(t *testing.T) {
	tests := []struct {
		wc      WriterConfig
		wantErr bool
	}{
		{WriterConfig{Type: STDOUT_WRITER_TYPE}, false},
		{WriterConfig{}, false},
		{WriterConfig{Type: FILE_WRITER_TYPE}, true},
		{WriterConfig{Type: API_WRITER_TYPE}, true},
		{WriterConfig{Type: POSTGRES_WRITER_TYPE}, true},
		{WriterConfig{Type: POSTGRES_WRITER_TYPE, Uri: "postgres://localhost/goapply?sslmode=disable"}, false},
		{WriterConfig{Type: "ftp"}, true},
	}
	for _, tc := range tests {
		_, err := NewWriter(&tc.wc)
		if (err != nil) != tc.wantErr {
			t.Fatalf("expected error %v for writer type %q but got %v", tc.wantErr, tc.wc.Type, err)
		}
	}
	if _, err := NewReader(&WriterConfig{Type: STDOUT_WRITER_TYPE}); !errors.Is(err, ErrNotListable) {
		t.Fatalf("expected ErrNotListable but got %v", err)
	}
}

func TestStdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewStdoutWriter(&WriterConfig{})
	w.out = &buf
	feed(w, records(1))
	if !strings.Contains(buf.String(), `"company": "R&D <Labs>"`) {
		t.Fatalf("expected unescaped indented json but got %s", buf.String())
	}
}

func TestFileWriterAppendsAndLists(t *testing.T) {
	dir := t.TempDir()
	w, err := NewFileWriter(&WriterConfig{FileDir: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	recs := records(3)
	feed(w, recs[:2])
	feed(w, recs[2:])

	got, err := w.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records but got %d", len(got))
	}
	if got[0].JobTitle != recs[2].JobTitle || !got[0].AppliedAt.Equal(recs[2].AppliedAt) {
		t.Fatalf("expected the newest record first but got %+v", got[0])
	}
	got, _ = w.List(context.Background(), 2)
	if len(got) != 2 {
		t.Fatalf("expected the limit to be applied but got %d", len(got))
	}
}

func TestFileWriterSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	w, _ := NewFileWriter(&WriterConfig{FileDir: dir})
	feed(w, records(1))
	f, _ := os.OpenFile(w.path(), os.O_APPEND|os.O_WRONLY, 0644)
	f.WriteString("{not json\n\n")
	f.Close()
	got, err := w.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the malformed line to be skipped but got %d records", len(got))
	}
}

func TestFileWriterListEmpty(t *testing.T) {
	w, _ := NewFileWriter(&WriterConfig{FileDir: t.TempDir()})
	got, err := w.List(context.Background(), 10)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected no records and no error but got %v, %v", got, err)
	}
}

func TestAPIWriterBatches(t *testing.T) {
	var batches [][]types.ApplicationRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, p, _ := r.BasicAuth(); u != "user" || p != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var batch []types.ApplicationRecord
		_ = json.Unmarshal(body, &batch)
		batches = append(batches, batch)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	w, err := NewAPIWriter(&WriterConfig{Uri: srv.URL, User: "user", Password: "pw", BatchSize: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	feed(w, records(3))
	if len(batches) != 2 || len(batches[0]) != 2 || len(batches[1]) != 1 {
		t.Fatalf("expected batches of 2 and 1 but got %v", batches)
	}
}

func TestPostgresQueries(t *testing.T) {
	w, err := NewPostgresWriter(&WriterConfig{Uri: "postgres://localhost/goapply?sslmode=disable", Table: `odd"name`})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.db.Close()
	if !strings.Contains(w.insertQuery(), `INSERT INTO "odd""name"`) {
		t.Fatalf("expected the table name to be quoted but got %s", w.insertQuery())
	}
	if !strings.Contains(w.createTableQuery(), "applied_at TIMESTAMPTZ") {
		t.Fatalf("expected the schema to include applied_at")
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	uri := os.Getenv("GOAPPLY_TEST_POSTGRES_URI")
	if uri == "" {
		t.Skip("GOAPPLY_TEST_POSTGRES_URI not set")
	}
	table := "goapply_test_" + time.Now().Format("20060102150405")
	w, err := NewPostgresWriter(&WriterConfig{Uri: uri, Table: table})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer w.db.Exec("DROP TABLE " + w.table)
	for _, rec := range records(2) {
		if err := w.insert(context.Background(), rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	got, err := w.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].JobTitle != "Backend Engineer B" {
		t.Fatalf("expected the newest record but got %+v", got)
	}
}
