package cli

import (
	"fmt"
	"os"

	"github.com/quiltsoft/stitch/internal/content"
	"github.com/quiltsoft/stitch/internal/identity"
	"github.com/quiltsoft/stitch/internal/resolve"
)

// loadDocument reads and decodes a document file with a fresh engine.
// Command errors (missing file, malformed JSON) come back as ExitErrors
// with code 2 so RunE can surface them directly.
func loadDocument(path, locale string) (*content.Document, *resolve.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, NewExitError(ExitCommandError, fmt.Sprintf("document not found: %s", path))
		}
		return nil, nil, WrapExitError(ExitCommandError, "reading document", err)
	}

	dc := content.NewDecodeContext(resolve.NewEngine(), nil, locale)
	doc, report, err := content.DecodeDocument(data, dc)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("decoding %s", path), err)
	}
	return doc, report, nil
}

// keyStrings renders identity keys for CLI output.
func keyStrings(keys []identity.Key) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
