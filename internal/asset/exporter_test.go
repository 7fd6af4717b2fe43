package asset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSummary() *SummaryResult {
	return &SummaryResult{
		Summary: []DepartmentSummary{
			{DepartmentName: "Kewangan", TotalAssets: 8, AssetsInspected: 2, AssetsNotInspected: 6, PercentageInspected: 25},
			{DepartmentName: "Teknologi", TotalAssets: 4, AssetsInspected: 4, AssetsNotInspected: 0, PercentageInspected: 100},
		},
		Overall: OverallSummary{TotalAssets: 12, AssetsInspected: 6, AssetsNotInspected: 6, PercentageInspected: 50},
	}
}

func TestExportCSV(t *testing.T) {
	exporter := NewSummaryExporter()

	data, filename, contentType, err := exporter.Export(FormatCSV, sampleSummary())
	require.NoError(t, err)

	assert.Equal(t, "text/csv", contentType)
	assert.True(t, strings.HasPrefix(filename, "asset_summary_"))
	assert.True(t, strings.HasSuffix(filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Department,Total Assets,Inspected,Not Inspected,% Inspected", lines[0])
	assert.Equal(t, "Kewangan,8,2,6,25.00", lines[1])
	assert.Contains(t, lines[3], "Overall")
	assert.Contains(t, lines[3], "50.00")
}

func TestExportExcelAndPDFProduceOutput(t *testing.T) {
	exporter := NewSummaryExporter()

	data, filename, contentType, err := exporter.Export(FormatExcel, sampleSummary())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", contentType)

	data, filename, contentType, err = exporter.Export(FormatPDF, sampleSummary())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
	assert.Equal(t, "application/pdf", contentType)
}

func TestExportUnknownFormat(t *testing.T) {
	exporter := NewSummaryExporter()

	_, _, _, err := exporter.Export("docx", sampleSummary())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}
