package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/JonMunkholm/storyimport/internal/core"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// userError prefixes err with its catalogue message so the shell sees the
// code and suggested action next to the underlying cause.
func userError(err error) error {
	return fmt.Errorf("%s\n  cause: %w", core.FormatUserError(err), err)
}
