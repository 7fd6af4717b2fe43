package asset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "xlsx"
	FormatPDF   = "pdf"
)

// SummaryExporter renders the inspection summary in a downloadable format.
type SummaryExporter interface {
	Export(format string, result *SummaryResult) ([]byte, string, string, error)
}

type summaryExporter struct{}

func NewSummaryExporter() SummaryExporter {
	return &summaryExporter{}
}

var summaryHeaders = []string{
	"Department", "Total Assets", "Inspected", "Not Inspected", "% Inspected",
}

func (e *summaryExporter) Export(format string, result *SummaryResult) ([]byte, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")

	switch format {
	case FormatCSV:
		data, err := e.exportCSV(result)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("asset_summary_%s.csv", timestamp), "text/csv", nil

	case FormatExcel:
		data, err := e.exportExcel(result)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("asset_summary_%s.xlsx", timestamp),
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatPDF:
		data, err := e.exportPDF(result)
		if err != nil {
			return nil, "", "", err
		}
		return data, fmt.Sprintf("asset_summary_%s.pdf", timestamp), "application/pdf", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported export format: %s", format)
	}
}

func (e *summaryExporter) exportCSV(result *SummaryResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(summaryHeaders); err != nil {
		return nil, err
	}
	for _, row := range result.Summary {
		record := []string{
			row.DepartmentName,
			strconv.FormatInt(row.TotalAssets, 10),
			strconv.FormatInt(row.AssetsInspected, 10),
			strconv.FormatInt(row.AssetsNotInspected, 10),
			fmt.Sprintf("%.2f", row.PercentageInspected),
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}
	overall := []string{
		"Overall",
		strconv.FormatInt(result.Overall.TotalAssets, 10),
		strconv.FormatInt(result.Overall.AssetsInspected, 10),
		strconv.FormatInt(result.Overall.AssetsNotInspected, 10),
		fmt.Sprintf("%.2f", result.Overall.PercentageInspected),
	}
	if err := writer.Write(overall); err != nil {
		return nil, err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *summaryExporter) exportExcel(result *SummaryResult) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Asset Summary"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for i, h := range summaryHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	for rIdx, r := range result.Summary {
		row := rIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.DepartmentName)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.TotalAssets)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), r.AssetsInspected)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), r.AssetsNotInspected)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), r.PercentageInspected)
	}

	overallRow := len(result.Summary) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", overallRow), "Overall")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", overallRow), result.Overall.TotalAssets)
	f.SetCellValue(sheet, fmt.Sprintf("C%d", overallRow), result.Overall.AssetsInspected)
	f.SetCellValue(sheet, fmt.Sprintf("D%d", overallRow), result.Overall.AssetsNotInspected)
	f.SetCellValue(sheet, fmt.Sprintf("E%d", overallRow), result.Overall.PercentageInspected)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *summaryExporter) exportPDF(result *SummaryResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 10, "Asset Inspection Summary")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	widths := []float64{70, 30, 30, 30, 30}
	for i, h := range summaryHeaders {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, r := range result.Summary {
		pdf.CellFormat(widths[0], 6, r.DepartmentName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, strconv.FormatInt(r.TotalAssets, 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, strconv.FormatInt(r.AssetsInspected, 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, strconv.FormatInt(r.AssetsNotInspected, 10), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f%%", r.PercentageInspected), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(widths[0], 6, "Overall", "1", 0, "L", false, 0, "")
	pdf.CellFormat(widths[1], 6, strconv.FormatInt(result.Overall.TotalAssets, 10), "1", 0, "C", false, 0, "")
	pdf.CellFormat(widths[2], 6, strconv.FormatInt(result.Overall.AssetsInspected, 10), "1", 0, "C", false, 0, "")
	pdf.CellFormat(widths[3], 6, strconv.FormatInt(result.Overall.AssetsNotInspected, 10), "1", 0, "C", false, 0, "")
	pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f%%", result.Overall.PercentageInspected), "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
