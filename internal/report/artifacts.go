package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ArtifactWriter persists run artifacts under a per-run directory:
// JSONL for row streams, plain JSON for single documents.
type ArtifactWriter struct {
	dir string
}

// NewArtifactWriter creates the run directory <base>/<runID>.
func NewArtifactWriter(base, runID string) (*ArtifactWriter, error) {
	dir := filepath.Join(base, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create artifact dir: %w", err)
	}
	return &ArtifactWriter{dir: dir}, nil
}

// Dir returns the run directory.
func (w *ArtifactWriter) Dir() string { return w.dir }

// Path returns the full path of a named artifact inside the run dir.
func (w *ArtifactWriter) Path(name string) string { return filepath.Join(w.dir, name) }

// WriteJSON writes one document as indented JSON.
func (w *ArtifactWriter) WriteJSON(name string, doc any) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(w.Path(name), raw, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	log.Debug().Str("artifact", name).Msg("artifact written")
	return nil
}

// WriteJSONL writes one JSON document per line. Row streams (trades,
// equity points, scan rows) use this so they stream into downstream
// tooling without a full-document parse.
func WriteJSONL[T any](w *ArtifactWriter, name string, rows []T) error {
	f, err := os.Create(w.Path(name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	enc := json.NewEncoder(buf)
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return fmt.Errorf("encode %s row %d: %w", name, i, err)
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", name, err)
	}
	log.Debug().Str("artifact", name).Int("rows", len(rows)).Msg("artifact written")
	return nil
}
