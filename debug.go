package tuneloop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// mkdirAll is swapped in tests to observe directory creation.
var mkdirAll = os.MkdirAll

// prepareDebugPath derives <base>/<label> and creates it. MkdirAll succeeds on
// existing directories, so concurrent runs sharing a label are safe.
//
// The label must be a single path element: it names the scoring function,
// never a location of its own.
func prepareDebugPath(base, label string) (string, error) {
	if label == "" {
		return "", ErrDebugLabelRequired
	}

	if label == "." || label == ".." || strings.ContainsAny(label, `/\`) {
		return "", fmt.Errorf("debug label %q must be a single path element", label)
	}

	path := filepath.Join(base, label)

	if err := mkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("creating debug directory: %w", err)
	}

	return path, nil
}
