package document

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"text/tabwriter"
)

// Table is a parsed delimited file. Column and row order follow the input and
// cell text is kept exactly as read.
type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseTabular reads a comma-separated file whose first record is the header.
// Rows with a different number of fields than the header are rejected.
func ParseTabular(data []byte) (Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return Table{}, err
	}
	if len(records) == 0 {
		return Table{}, errors.New("no rows")
	}
	return Table{Columns: records[0], Rows: records[1:]}, nil
}

// Render flattens the table into aligned plain text, header first.
func (t Table) Render() string {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	writeRow(w, t.Columns)
	for _, row := range t.Rows {
		writeRow(w, row)
	}
	_ = w.Flush()
	return buf.String()
}

func writeRow(w *tabwriter.Writer, cells []string) {
	cleaned := make([]string, len(cells))
	for i, c := range cells {
		// tabwriter treats tabs and newlines as cell/line breaks.
		cleaned[i] = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(c)
	}
	_, _ = w.Write([]byte(strings.Join(cleaned, "\t") + "\n"))
}
