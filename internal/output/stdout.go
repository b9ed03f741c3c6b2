package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goapply/goapply/internal/types"
)

// StdoutWriter prints every record as indented JSON.
type StdoutWriter struct {
	out    io.Writer
	logger *slog.Logger
}

func NewStdoutWriter(wc *WriterConfig) *StdoutWriter {
	return &StdoutWriter{
		out:    os.Stdout,
		logger: slog.With(slog.String("writer", string(STDOUT_WRITER_TYPE))),
	}
}

func (w *StdoutWriter) Write(recordChan <-chan types.ApplicationRecord) {
	for rec := range recordChan {
		b, err := encodeRecord(rec, "  ")
		if err != nil {
			w.logger.Error(fmt.Sprintf("error while writing record for %q: %v", rec.JobTitle, err))
			continue
		}
		fmt.Fprint(w.out, string(b))
	}
}

// encodeRecord keeps characters like & and < unescaped, which json.Marshal
// would replace.
func encodeRecord(rec types.ApplicationRecord, indent string) ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if indent != "" {
		encoder.SetIndent("", indent)
	}
	if err := encoder.Encode(rec); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
