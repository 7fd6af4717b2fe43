package department

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/utils"
)

// importLayout identifies which header shape a file uses.
type importLayout int

const (
	layoutUnknown importLayout = iota
	// layoutStandard has one location per row: a department column
	// (Bahagian or Jabatan), a location column (Lokasi Terkini or Lokasi)
	// and an optional supervisor column.
	layoutStandard
	// layoutAssetMultiLine is an asset-inspection export where a location
	// spans several rows. Only rows carrying a registration number are
	// primary rows, the rest are continuation detail.
	layoutAssetMultiLine
)

// Header synonyms, matched case-insensitively after trimming.
var (
	standardDeptHeaders       = []string{"bahagian", "jabatan"}
	standardLocationHeaders   = []string{"lokasi terkini", "lokasi"}
	standardSupervisorHeaders = []string{"pegawai penempatan", "pegawai penyelia"}

	multiLineHeaders = []string{
		"bil", "no. siri pendaftaran", "maklumat aset",
		"lokasi semasa", "pengguna", "bahagian",
	}
)

// importRow is one surviving row regardless of source layout.
type importRow struct {
	Department string
	Location   string
	Supervisor string
	SourceFile string
}

type columnMap struct {
	layout     importLayout
	dept       int
	location   int
	supervisor int // -1 when absent
	regNumber  int // multi-line layout only
}

func headerIndex(headers []string, names ...string) int {
	for i, h := range headers {
		cleaned := strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if cleaned == name {
				return i
			}
		}
	}
	return -1
}

// detectLayout classifies a header row. The multi-line layout requires all
// six of its headers, so it is checked first; a standard file would never
// carry a registration-number column.
func detectLayout(headers []string) (columnMap, error) {
	multiLine := true
	for _, name := range multiLineHeaders {
		if headerIndex(headers, name) < 0 {
			multiLine = false
			break
		}
	}
	if multiLine {
		return columnMap{
			layout:     layoutAssetMultiLine,
			dept:       headerIndex(headers, "bahagian"),
			location:   headerIndex(headers, "lokasi semasa"),
			supervisor: headerIndex(headers, "pengguna"),
			regNumber:  headerIndex(headers, "no. siri pendaftaran"),
		}, nil
	}

	dept := headerIndex(headers, standardDeptHeaders...)
	location := headerIndex(headers, standardLocationHeaders...)
	if dept < 0 || location < 0 {
		return columnMap{}, errors.New("missing required columns (Bahagian/Jabatan, Lokasi Terkini/Lokasi)")
	}

	return columnMap{
		layout:     layoutStandard,
		dept:       dept,
		location:   location,
		supervisor: headerIndex(headers, standardSupervisorHeaders...),
		regNumber:  -1,
	}, nil
}

// extractRows applies the column map to the data rows. Rows missing a
// department or location are silently skipped in both layouts. In the
// multi-line layout continuation rows (no registration number) are skipped
// as well.
func extractRows(cm columnMap, rows [][]string, sourceFile string) []importRow {
	var out []importRow
	for _, row := range rows {
		if cm.layout == layoutAssetMultiLine && utils.RowCell(row, cm.regNumber) == "" {
			continue
		}

		dept := utils.RowCell(row, cm.dept)
		location := utils.RowCell(row, cm.location)
		if dept == "" || location == "" {
			continue
		}

		supervisor := ""
		if cm.supervisor >= 0 {
			supervisor = utils.RowCell(row, cm.supervisor)
		}

		out = append(out, importRow{
			Department: dept,
			Location:   location,
			Supervisor: supervisor,
			SourceFile: sourceFile,
		})
	}
	return out
}

// ImportResult summarizes one bulk import call.
type ImportResult struct {
	DepartmentsCreated int      `json:"departments_created"`
	LocationsCreated   int      `json:"locations_created"`
	TotalRows          int      `json:"total_rows"`
	Errors             []string `json:"errors"`
}

// ImportStore is the persistence surface the importer needs. The location
// and user lookups cross entity boundaries, so they run as direct table
// queries rather than through those packages' repositories.
type ImportStore interface {
	FindDepartmentExact(value string) (*Department, error)
	CreateDepartment(dept *Department) error
	FindLocationID(departmentID uint, name string) (uint, error)
	CreateLocation(departmentID uint, name, supervisor string) (uint, error)
	UpdateLocationSupervisor(locationID uint, supervisor string) error
	FindUserIDByNameLike(name string) (string, error)
	WipeAll() error
}

type importStore struct{ db *gorm.DB }

func NewImportStore(db *gorm.DB) ImportStore {
	return &importStore{db}
}

func (s *importStore) FindDepartmentExact(value string) (*Department, error) {
	var d Department
	cleaned := strings.TrimSpace(value)
	err := s.db.
		Where("LOWER(name) = LOWER(?) OR LOWER(acronym) = LOWER(?)", cleaned, cleaned).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *importStore) CreateDepartment(dept *Department) error {
	return s.db.Create(dept).Error
}

func (s *importStore) FindLocationID(departmentID uint, name string) (uint, error) {
	var row struct{ ID uint }
	err := s.db.Table("locations").
		Select("id").
		Where("department_id = ? AND name = ?", departmentID, name).
		First(&row).Error
	if err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (s *importStore) CreateLocation(departmentID uint, name, supervisor string) (uint, error) {
	loc := map[string]interface{}{
		"name":          name,
		"department_id": departmentID,
	}
	if supervisor != "" {
		loc["supervisor"] = supervisor
	}
	result := s.db.Table("locations").Create(loc)
	if result.Error != nil {
		return 0, result.Error
	}
	var row struct{ ID uint }
	err := s.db.Table("locations").
		Select("id").
		Where("department_id = ? AND name = ?", departmentID, name).
		Order("id DESC").
		First(&row).Error
	if err != nil {
		return 0, err
	}
	return row.ID, nil
}

func (s *importStore) UpdateLocationSupervisor(locationID uint, supervisor string) error {
	return s.db.Table("locations").
		Where("id = ?", locationID).
		Update("supervisor", supervisor).Error
}

func (s *importStore) FindUserIDByNameLike(name string) (string, error) {
	var row struct{ ID string }
	err := s.db.Table("users").
		Select("id").
		Where("name ILIKE ?", "%"+strings.TrimSpace(name)+"%").
		Order("id ASC").
		First(&row).Error
	if err != nil {
		return "", err
	}
	return row.ID, nil
}

// wipeStatements clears every row referencing locations or departments
// before the rows themselves. The foreign keys are plain RESTRICT, so
// inspections must go before locations, and assignments plus the users'
// department link must be cleared before departments.
var wipeStatements = []string{
	"DELETE FROM asset_inspections",
	"DELETE FROM asset_upload_batches",
	"DELETE FROM inspections",
	"DELETE FROM cross_audit_assignments",
	"UPDATE users SET department_id = NULL",
	"DELETE FROM locations",
	"DELETE FROM departments",
}

func (s *importStore) WipeAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range wipeStatements {
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Importer runs the department/location bulk import pipeline.
type Importer struct {
	store ImportStore
}

func NewImporter(store ImportStore) *Importer {
	return &Importer{store: store}
}

// ImportFile is one parsed upload handed to Import.
type ImportFile struct {
	Name string
	Rows [][]string
}

// Import processes every file, then find-or-creates departments and
// locations for each surviving row. File and row failures are collected
// into the result's error list, they never abort the batch. When overwrite
// is set all existing data is wiped first; a wipe failure aborts before any
// file is read.
func (im *Importer) Import(files []ImportFile, overwrite bool) (*ImportResult, error) {
	if overwrite {
		if err := im.store.WipeAll(); err != nil {
			return nil, fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	result := &ImportResult{Errors: []string{}}

	var allRows []importRow
	for _, f := range files {
		if len(f.Rows) < 2 {
			result.Errors = append(result.Errors, fmt.Sprintf("File %s: No data rows found", f.Name))
			continue
		}

		cm, err := detectLayout(f.Rows[0])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("File %s: %v", f.Name, err))
			continue
		}

		allRows = append(allRows, extractRows(cm, f.Rows[1:], f.Name)...)
	}

	result.TotalRows = len(allRows)

	// Dedup so a department or location spanning many rows counts once.
	createdDepts := map[uint]bool{}
	createdLocations := map[uint]bool{}

	for _, row := range allRows {
		deptID, created, err := im.findOrCreateDepartment(row.Department)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row from %s: %v", row.SourceFile, err))
			continue
		}
		if created && !createdDepts[deptID] {
			result.DepartmentsCreated++
			createdDepts[deptID] = true
		}

		supervisor := im.resolveSupervisor(row.Supervisor)

		locID, locCreated, err := im.findOrCreateLocation(deptID, row.Location, supervisor)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row from %s: %v", row.SourceFile, err))
			continue
		}
		if locCreated && !createdLocations[locID] {
			result.LocationsCreated++
			createdLocations[locID] = true
		}

		if !locCreated && supervisor != "" {
			if err := im.store.UpdateLocationSupervisor(locID, supervisor); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Row from %s: %v", row.SourceFile, err))
			}
		}
	}

	return result, nil
}

func (im *Importer) findOrCreateDepartment(name string) (uint, bool, error) {
	dept, err := im.store.FindDepartmentExact(name)
	if err == nil {
		return dept.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, err
	}

	created := &Department{Name: strings.TrimSpace(name)}
	if err := im.store.CreateDepartment(created); err != nil {
		return 0, false, err
	}
	return created.ID, true, nil
}

func (im *Importer) findOrCreateLocation(deptID uint, name, supervisor string) (uint, bool, error) {
	id, err := im.store.FindLocationID(deptID, name)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, err
	}

	id, err = im.store.CreateLocation(deptID, name, supervisor)
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// resolveSupervisor maps a free-text supervisor name to a user id when one
// matches by name substring, otherwise it keeps the raw text.
func (im *Importer) resolveSupervisor(raw string) string {
	if raw == "" {
		return ""
	}
	if userID, err := im.store.FindUserIDByNameLike(raw); err == nil && userID != "" {
		return userID
	}
	return raw
}
