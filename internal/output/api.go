package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/goapply/goapply/internal/types"
)

// APIWriter posts records in batches to a REST endpoint.
type APIWriter struct {
	*WriterConfig
	client *http.Client
	logger *slog.Logger
}

func NewAPIWriter(wc *WriterConfig) (*APIWriter, error) {
	if wc.Uri == "" {
		return nil, errors.New("uri needs to be specified for the APIWriter")
	}
	if wc.BatchSize == 0 {
		wc.BatchSize = 1
	}
	return &APIWriter{
		WriterConfig: wc,
		client:       &http.Client{Timeout: time.Second * 60},
		logger:       slog.With(slog.String("writer", string(API_WRITER_TYPE))),
	}, nil
}

func (w *APIWriter) Write(recordChan <-chan types.ApplicationRecord) {
	nrWritten := 0
	batch := []types.ApplicationRecord{}
	for rec := range recordChan {
		batch = append(batch, rec)
		if len(batch) == w.BatchSize {
			nrWritten += w.writeBatch(batch)
			batch = []types.ApplicationRecord{}
		}
	}
	nrWritten += w.writeBatch(batch)
	w.logger.Info(fmt.Sprintf("wrote %d records to the api", nrWritten))
}

func (w *APIWriter) writeBatch(batch []types.ApplicationRecord) int {
	if len(batch) == 0 {
		return 0
	}
	if err := w.persistBatch(batch); err != nil {
		w.logger.Error(fmt.Sprintf("error while posting batch: %v", err))
		return 0
	}
	return len(batch)
}

func (w *APIWriter) persistBatch(batch []types.ApplicationRecord) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, w.Uri, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.User != "" {
		req.SetBasicAuth(w.User, w.Password)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Debug(fmt.Sprintf("post request body %s", body))
		return fmt.Errorf("error while sending post request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("error while reading post request response: %w", err)
		}
		return fmt.Errorf("error while adding records. Status Code: %d Response: %s", resp.StatusCode, b)
	}
	return nil
}
