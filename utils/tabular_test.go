package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTabularFileCSV(t *testing.T) {
	t.Run("plain csv", func(t *testing.T) {
		rows, err := ParseTabularFile("data.csv", []byte("a,b,c\n1,2,3\n"))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"a", "b", "c"}, rows[0])
		assert.Equal(t, []string{"1", "2", "3"}, rows[1])
	})

	t.Run("strips the excel BOM", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Label,Bahagian\nKEW/001,BKW\n")...)
		rows, err := ParseTabularFile("data.csv", data)
		require.NoError(t, err)
		assert.Equal(t, "Label", rows[0][0])
	})

	t.Run("rows narrower than the header are dropped", func(t *testing.T) {
		csv := "Label,Jenis Aset,Pegawai Penempatan,Bahagian,Lokasi Terkini\n" +
			"A1,Laptop\n" +
			"A2,Printer,Ali,BKW,Aras 3\n"
		rows, err := ParseTabularFile("data.csv", []byte(csv))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "A2", rows[1][0])
	})

	t.Run("rows wider than the header are dropped", func(t *testing.T) {
		rows, err := ParseTabularFile("data.csv", []byte("a,b,c\n1,2,3,4\n5,6,7\n"))
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "5", rows[1][0])
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := ParseTabularFile("data.csv", []byte(""))
		assert.ErrorIs(t, err, ErrEmptySpreadsheet)
	})
}

func TestParseTabularFileUnsupported(t *testing.T) {
	_, err := ParseTabularFile("report.pdf", []byte("%PDF"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestRowCell(t *testing.T) {
	row := []string{" a ", "b", ""}

	assert.Equal(t, "a", RowCell(row, 0))
	assert.Equal(t, "", RowCell(row, 2))
	assert.Equal(t, "", RowCell(row, 5))
	assert.Equal(t, "", RowCell(row, -1))
}
