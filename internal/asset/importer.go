package asset

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/internal/department"
	"github.com/amirulhaziq/inspectable-backend/utils"
)

// The five ingestion columns, matched case-insensitively after trimming.
var requiredAssetColumns = []string{
	"Label", "Jenis Aset", "Pegawai Penempatan", "Bahagian", "Lokasi Terkini",
}

type assetColumnMap struct {
	label    int
	jenis    int
	pegawai  int
	bahagian int
	lokasi   int
}

func assetHeaderIndex(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func mapAssetColumns(filename string, headers []string) (assetColumnMap, error) {
	for _, col := range requiredAssetColumns {
		if assetHeaderIndex(headers, col) < 0 {
			return assetColumnMap{}, fmt.Errorf("missing required column '%s' in file: %s", col, filename)
		}
	}
	return assetColumnMap{
		label:    assetHeaderIndex(headers, "Label"),
		jenis:    assetHeaderIndex(headers, "Jenis Aset"),
		pegawai:  assetHeaderIndex(headers, "Pegawai Penempatan"),
		bahagian: assetHeaderIndex(headers, "Bahagian"),
		lokasi:   assetHeaderIndex(headers, "Lokasi Terkini"),
	}, nil
}

// sameHeader reports whether two header rows are literally identical. Files
// in one ingestion run must share a column list so the concatenated rows
// mean the same thing everywhere.
func sameHeader(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// extractedRecord is one surviving spreadsheet row before persistence.
type extractedRecord struct {
	Label             string
	JenisAset         string
	PegawaiPenempatan string
	Bahagian          string
	LokasiTerkini     string
}

// extractRecords applies the column map to the data rows. Rows whose cell
// count differs from the header are malformed and dropped. Rows without a
// label are skipped, they are blank padding in exported spreadsheets.
func extractRecords(cm assetColumnMap, width int, rows [][]string) []extractedRecord {
	var out []extractedRecord
	for _, row := range rows {
		if len(row) != width {
			continue
		}
		label := utils.RowCell(row, cm.label)
		if label == "" {
			continue
		}
		out = append(out, extractedRecord{
			Label:             label,
			JenisAset:         utils.RowCell(row, cm.jenis),
			PegawaiPenempatan: utils.RowCell(row, cm.pegawai),
			Bahagian:          utils.RowCell(row, cm.bahagian),
			LokasiTerkini:     utils.RowCell(row, cm.lokasi),
		})
	}
	return out
}

// departmentResolver maps free-text Bahagian values to department ids,
// trying an exact name/acronym match before a partial one. Results are
// memoized, a large spreadsheet repeats the same handful of names.
type departmentResolver struct {
	depts department.Repository
	cache map[string]*uint
}

func newDepartmentResolver(depts department.Repository) *departmentResolver {
	return &departmentResolver{depts: depts, cache: map[string]*uint{}}
}

func (dr *departmentResolver) resolve(bahagian string) *uint {
	name := strings.TrimSpace(bahagian)
	if name == "" {
		return nil
	}
	if id, ok := dr.cache[name]; ok {
		return id
	}

	var id *uint
	dept, err := dr.depts.FindByNameOrAcronym(name)
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		dept, err = dr.depts.FindByNameLike(name)
	}
	if err == nil {
		id = &dept.ID
	}
	dr.cache[name] = id
	return id
}
