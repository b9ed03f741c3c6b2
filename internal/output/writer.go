// Package output provides the interface, configuration and implementations
// of the writers that persist application records.
package output

import (
	"context"
	"errors"
	"fmt"

	"github.com/goapply/goapply/internal/types"
)

// Writer persists the records received on recordChan until it is closed.
// Failures are logged and never reach the engine.
type Writer interface {
	Write(recordChan <-chan types.ApplicationRecord)
}

// Reader lists persisted records, newest first.
type Reader interface {
	List(ctx context.Context, limit int) ([]types.ApplicationRecord, error)
}

// ErrNotListable is returned by Open for writers that cannot be read back.
var ErrNotListable = errors.New("writer does not support listing records")

// WriterConfig defines the parameters of a record writer.
type WriterConfig struct {
	Type      WriterType `yaml:"type" env:"WRITER_TYPE" env-default:"stdout"`
	Uri       string     `yaml:"uri" env:"WRITER_URI"`
	User      string     `yaml:"user" env:"WRITER_USER"`
	Password  string     `yaml:"password" env:"WRITER_PASSWORD"`
	FileDir   string     `yaml:"filedir" env:"WRITER_FILEDIR"`
	BatchSize int        `yaml:"batch_size,omitempty"`
	Table     string     `yaml:"table,omitempty"`
}

// WriterType encapsulates the type of a writer.
type WriterType string

const (
	STDOUT_WRITER_TYPE   WriterType = "stdout"
	FILE_WRITER_TYPE     WriterType = "file"
	API_WRITER_TYPE      WriterType = "api"
	POSTGRES_WRITER_TYPE WriterType = "postgres"
)

// NewWriter returns a new writer depending on the writer type.
func NewWriter(wc *WriterConfig) (Writer, error) {
	switch wc.Type {
	case STDOUT_WRITER_TYPE, "":
		return NewStdoutWriter(wc), nil
	case FILE_WRITER_TYPE:
		return NewFileWriter(wc)
	case API_WRITER_TYPE:
		return NewAPIWriter(wc)
	case POSTGRES_WRITER_TYPE:
		return NewPostgresWriter(wc)
	default:
		return nil, fmt.Errorf("writer of type '%s' not implemented", wc.Type)
	}
}

// NewReader returns a reader for writer types that can list their records.
func NewReader(wc *WriterConfig) (Reader, error) {
	w, err := NewWriter(wc)
	if err != nil {
		return nil, err
	}
	r, ok := w.(Reader)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotListable, wc.Type)
	}
	return r, nil
}
