package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ProvenanceHeader is the header row of the story-to-node mapping file.
var ProvenanceHeader = []string{"story_name", "node_id"}

// WriteProvenance writes entries as a CSV with ProvenanceHeader, replacing
// any file already at path.
//
// The file is written to a temporary sibling and renamed into place, so a
// reader sees either the previous mapping or the complete new one.
func WriteProvenance(path string, entries []ProvenanceEntry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mapping dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create mapping file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := encodeProvenance(tmp, entries); err != nil {
		tmp.Close()
		return fmt.Errorf("write mapping: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync mapping: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close mapping: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod mapping: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace mapping: %w", err)
	}
	return nil
}

func encodeProvenance(w io.Writer, entries []ProvenanceEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProvenanceHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.StoryName, e.NodeID}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
