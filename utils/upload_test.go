package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthyString(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", " yes ", "on"} {
		assert.True(t, TruthyString(v), v)
	}
	for _, v := range []string{"", "0", "false", "no", "off", "maybe"} {
		assert.False(t, TruthyString(v), v)
	}
}

func TestTruncateFilename(t *testing.T) {
	assert.Equal(t, "short.csv", TruncateFilename("short.csv"))

	exactly30 := strings.Repeat("a", 30)
	assert.Equal(t, exactly30, TruncateFilename(exactly30))

	long := strings.Repeat("a", 31)
	got := TruncateFilename(long)
	assert.Equal(t, strings.Repeat("a", 27)+"...", got)
	assert.Len(t, got, 30)
}

func TestSummarizeFilenames(t *testing.T) {
	assert.Equal(t, "aset.xlsx", SummarizeFilenames([]string{"aset.xlsx"}))

	// A lone file keeps its full name, however long.
	lone := strings.Repeat("y", 40) + ".xlsx"
	assert.Equal(t, lone, SummarizeFilenames([]string{lone}))

	got := SummarizeFilenames([]string{"a.csv", "b.csv", "c.xlsx"})
	assert.Equal(t, "3 files: a.csv, b.csv, c.xlsx", got)

	long := strings.Repeat("x", 40) + ".csv"
	got = SummarizeFilenames([]string{"a.csv", long})
	assert.Contains(t, got, "2 files: a.csv, "+strings.Repeat("x", 27)+"...")
}
