package output

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"slices"
	"sync"

	"github.com/goapply/goapply/internal/types"
)

const recordsFilename = "applications.jsonl"

// FileWriter appends records as JSON lines to a file in FileDir. Records
// of earlier runs are kept.
type FileWriter struct {
	*WriterConfig
	mu     sync.Mutex
	logger *slog.Logger
}

func NewFileWriter(wc *WriterConfig) (*FileWriter, error) {
	if wc.FileDir == "" {
		return nil, errors.New("filedir needs to be specified for the FileWriter")
	}
	if err := os.MkdirAll(wc.FileDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", wc.FileDir, err)
	}
	return &FileWriter{
		WriterConfig: wc,
		logger:       slog.With(slog.String("writer", string(FILE_WRITER_TYPE))),
	}, nil
}

func (w *FileWriter) path() string {
	return path.Join(w.FileDir, recordsFilename)
}

func (w *FileWriter) Write(recordChan <-chan types.ApplicationRecord) {
	n := 0
	for rec := range recordChan {
		if err := w.append(rec); err != nil {
			w.logger.Error(fmt.Sprintf("error while writing record to file: %v", err))
			continue
		}
		n++
	}
	w.logger.Info(fmt.Sprintf("wrote %d records to file %s", n, w.path()))
}

func (w *FileWriter) append(rec types.ApplicationRecord) error {
	b, err := encodeRecord(rec, "")
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := os.OpenFile(w.path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(b)
	return err
}

// List returns up to limit records, newest first. A limit <= 0 returns all.
func (w *FileWriter) List(ctx context.Context, limit int) ([]types.ApplicationRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := os.Open(w.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var recs []types.ApplicationRecord
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var rec types.ApplicationRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			w.logger.Warn(fmt.Sprintf("skipping malformed record on line %d: %v", line, err))
			continue
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(recs)
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}
