package document

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindFromFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     Kind
		wantErr  bool
	}{
		{"pdf", "report.pdf", KindPDF, false},
		{"upper case pdf", "REPORT.PDF", KindPDF, false},
		{"csv", "report.csv", KindTabular, false},
		{"csv in path", "labs/2024/blood.Csv", KindTabular, false},
		{"xlsx", "report.xlsx", "", true},
		{"txt", "report.txt", "", true},
		{"no extension", "report", "", true},
		{"pdf as suffix only", "reportpdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KindFromFilename(tt.filename)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// countingExtractor records which extraction path ran.
func countingExtractor() (*Extractor, *int, *int) {
	var pdfCalls, tabularCalls int
	x := &Extractor{
		PDF: func([]byte) (string, error) {
			pdfCalls++
			return "pdf text", nil
		},
		Tabular: func([]byte) (Table, error) {
			tabularCalls++
			return Table{Columns: []string{"Test", "Value"}}, nil
		},
	}
	return x, &pdfCalls, &tabularCalls
}

func TestExtractDispatchesOnExtension(t *testing.T) {
	tests := []struct {
		filename    string
		wantPDF     int
		wantTabular int
		wantErr     error
	}{
		{"report.pdf", 1, 0, nil},
		{"report.csv", 0, 1, nil},
		{"report.docx", 0, 0, ErrUnsupportedKind},
		{"report.png", 0, 0, ErrUnsupportedKind},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			x, pdfCalls, tabularCalls := countingExtractor()
			doc, err := x.Extract(tt.filename, []byte("data"))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.filename, doc.Filename)
			}
			assert.Equal(t, tt.wantPDF, *pdfCalls)
			assert.Equal(t, tt.wantTabular, *tabularCalls)
		})
	}
}

func TestExtractWrapsExtractorFailure(t *testing.T) {
	x := &Extractor{
		PDF: func([]byte) (string, error) { return "", errors.New("corrupt xref") },
	}
	_, err := x.Extract("scan.pdf", []byte("%PDF"))

	var docErr *Error
	require.True(t, errors.As(err, &docErr))
	assert.Equal(t, KindPDF, docErr.Kind)
	assert.Equal(t, "scan.pdf", docErr.Filename)
	assert.Contains(t, err.Error(), "corrupt xref")
}

func TestExtractCSVLabReport(t *testing.T) {
	csvData := "Test,Value\nHemoglobin,13.5\nWBC,11200\n"

	doc, err := Extract("report.csv", []byte(csvData))
	require.NoError(t, err)

	require.NotNil(t, doc.Table)
	assert.Equal(t, []string{"Test", "Value"}, doc.Table.Columns)
	assert.Equal(t, [][]string{{"Hemoglobin", "13.5"}, {"WBC", "11200"}}, doc.Table.Rows)
	assert.Contains(t, doc.Text, "Hemoglobin")
	assert.Contains(t, doc.Text, "13.5")
	assert.Contains(t, doc.Text, "WBC")
	assert.Contains(t, doc.Text, "11200")
	assert.False(t, doc.Empty())
}

func TestParseTabular(t *testing.T) {
	t.Run("keeps order and values", func(t *testing.T) {
		table, err := ParseTabular([]byte("b,a,c\n3,1,2\n\"0013.50\",x,\n"))
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a", "c"}, table.Columns)
		assert.Equal(t, [][]string{{"3", "1", "2"}, {"0013.50", "x", ""}}, table.Rows)
	})

	t.Run("strips byte order mark", func(t *testing.T) {
		table, err := ParseTabular(append([]byte{0xEF, 0xBB, 0xBF}, []byte("Test,Value\n")...))
		require.NoError(t, err)
		assert.Equal(t, "Test", table.Columns[0])
	})

	t.Run("ragged rows are malformed", func(t *testing.T) {
		_, err := ParseTabular([]byte("a,b\n1,2,3\n"))
		assert.Error(t, err)
	})

	t.Run("unterminated quote is malformed", func(t *testing.T) {
		_, err := ParseTabular([]byte("a,b\n\"1,2\n"))
		assert.Error(t, err)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ParseTabular(nil)
		assert.Error(t, err)
	})
}

func TestTableRenderAligns(t *testing.T) {
	table := Table{
		Columns: []string{"Test", "Value"},
		Rows:    [][]string{{"Hemoglobin", "13.5"}, {"WBC", "11200"}},
	}
	want := "Test        Value\nHemoglobin  13.5\nWBC         11200\n"
	assert.Equal(t, want, table.Render())
}

func TestExtractMalformedCSVIsDocumentError(t *testing.T) {
	_, err := Extract("report.csv", []byte("a,b\n1,2,3\n"))
	var docErr *Error
	require.True(t, errors.As(err, &docErr))
	assert.Equal(t, KindTabular, docErr.Kind)
}

func TestExtractPDF(t *testing.T) {
	t.Run("text pages in order, blank page skipped", func(t *testing.T) {
		data := buildPDF(t, "Hemoglobin 13.5", "", "WBC 11200")
		text, err := ExtractPDF(data)
		require.NoError(t, err)

		assert.Contains(t, text, "Hemoglobin 13.5")
		assert.Contains(t, text, "WBC 11200")
		assert.Less(t, bytes.Index([]byte(text), []byte("Hemoglobin")), bytes.Index([]byte(text), []byte("WBC")))
	})

	t.Run("not a pdf", func(t *testing.T) {
		_, err := ExtractPDF([]byte("this is plain text pretending to be a pdf document, long enough to read a trailer chunk from the end"))
		assert.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ExtractPDF(nil)
		assert.Error(t, err)
	})
}

// buildPDF writes a minimal uncompressed PDF with one page per entry. An empty
// entry produces a page without a content stream.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) int {
		offsets = append(offsets, buf.Len())
		n := len(offsets)
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
		return n
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")

	// Reserve numbering: 1 catalog, 2 pages, 3 font, then page/content pairs.
	kids := ""
	next := 4
	for _, p := range pages {
		kids += fmt.Sprintf("%d 0 R ", next)
		if p == "" {
			next++
		} else {
			next += 2
		}
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for _, p := range pages {
		pageNum := len(offsets) + 1
		if p == "" {
			obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> >>")
			continue
		}
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageNum+1))
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", p)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}
