package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:   "CS101 / A / CSE",
		Headers: []string{"Roll Number", "Name", "Date", "Status"},
		Rows: [][]string{
			{"21CS001", "Asha", "2026-10-14", "Present"},
			{"21CS002", "Ravi, Jr.", "2026-10-14", "Absent"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	require.Error(t, err)
}

func TestCSVRendererQuotesCells(t *testing.T) {
	out, err := NewCSVRenderer().Render(sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Roll Number,Name,Date,Status\n21CS001,Asha,2026-10-14,Present\n21CS002,\"Ravi, Jr.\",2026-10-14,Absent\n", string(out))
}

func TestRenderRejectsRaggedRows(t *testing.T) {
	table := sampleTable()
	table.Rows = append(table.Rows, []string{"only-one"})
	_, err := NewCSVRenderer().Render(table)
	require.Error(t, err)
	_, err = NewPDFRenderer().Render(table)
	require.Error(t, err)
}

func TestPDFRendererProducesDocument(t *testing.T) {
	table := sampleTable()
	for i := 0; i < 80; i++ {
		table.Rows = append(table.Rows, []string{"21CS100", "Filler", "2026-10-13", "Present"})
	}
	out, err := RendererFor(FormatPDF).Render(table)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
