// Package output writes a run's prospect list for hand-off.
package output

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-cli/internal/model"
)

// WriteJSON encodes the run result as indented JSON.
func WriteJSON(w io.Writer, result *model.RunResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(result), "output: encode json")
}

// WriteFile writes result to path, choosing the format from the extension.
// ".xlsx" produces a workbook; anything else produces JSON.
func WriteFile(path string, result *model.RunResult) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return WriteXLSX(path, result)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "output: create %s", path)
	}
	if err := WriteJSON(f, result); err != nil {
		f.Close() //nolint:errcheck
		return err
	}
	return eris.Wrapf(f.Close(), "output: close %s", path)
}
