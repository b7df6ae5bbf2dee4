// Package rowsource reads tabular founder exports (CSV, XLSX, JSON) into
// founder records.
package rowsource

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/founder-resolve/internal/founder"
)

// Table is a parsed sheet: one header row and the data rows beneath it.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadCSV parses CSV with a header row. Rows may have differing widths.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "csv: read rows")
	}
	return newTable(all)
}

func newTable(all [][]string) (*Table, error) {
	if len(all) == 0 {
		return nil, eris.New("rowsource: input has no header row")
	}
	header := make([]string, len(all[0]))
	for i, h := range all[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return &Table{Header: header, Rows: all[1:]}, nil
}

// Open reads a CSV or XLSX file, chosen by extension.
func Open(path string) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "rowsource: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(path, 0)
	default:
		return nil, eris.Errorf("rowsource: unsupported file type %q", ext)
	}
}

// Load reads founder records from path. JSON files hold an array of
// records; CSV and XLSX files are mapped column by column with m.
func Load(path string, m *Mapping) ([]founder.Record, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "rowsource: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return ReadJSON(f)
	}

	t, err := Open(path)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = DefaultMapping()
	}
	return t.Records(m), nil
}

// ReadJSON decodes a JSON array of founder records.
func ReadJSON(r io.Reader) ([]founder.Record, error) {
	var recs []founder.Record
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, eris.Wrap(err, "json: decode records")
	}
	return recs, nil
}
