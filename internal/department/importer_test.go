package department

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockImportStore struct {
	departments map[string]*Department
	locations   map[string]uint // "deptID/name" -> id
	supervisors map[uint]string // location id -> supervisor
	users       map[string]string

	nextDeptID uint
	nextLocID  uint
	wiped      bool
	wipeErr    error
}

func newMockImportStore() *mockImportStore {
	return &mockImportStore{
		departments: map[string]*Department{},
		locations:   map[string]uint{},
		supervisors: map[uint]string{},
		users:       map[string]string{},
	}
}

func (m *mockImportStore) FindDepartmentExact(value string) (*Department, error) {
	cleaned := strings.ToLower(strings.TrimSpace(value))
	for _, d := range m.departments {
		if strings.ToLower(d.Name) == cleaned || (d.Acronym != nil && strings.ToLower(*d.Acronym) == cleaned) {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockImportStore) CreateDepartment(dept *Department) error {
	m.nextDeptID++
	dept.ID = m.nextDeptID
	m.departments[dept.Name] = dept
	return nil
}

func locKey(departmentID uint, name string) string {
	return fmt.Sprintf("%d/%s", departmentID, name)
}

func (m *mockImportStore) FindLocationID(departmentID uint, name string) (uint, error) {
	if id, ok := m.locations[locKey(departmentID, name)]; ok {
		return id, nil
	}
	return 0, gorm.ErrRecordNotFound
}

func (m *mockImportStore) CreateLocation(departmentID uint, name, supervisor string) (uint, error) {
	m.nextLocID++
	m.locations[locKey(departmentID, name)] = m.nextLocID
	if supervisor != "" {
		m.supervisors[m.nextLocID] = supervisor
	}
	return m.nextLocID, nil
}

func (m *mockImportStore) UpdateLocationSupervisor(locationID uint, supervisor string) error {
	m.supervisors[locationID] = supervisor
	return nil
}

func (m *mockImportStore) FindUserIDByNameLike(name string) (string, error) {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	for userName, id := range m.users {
		if strings.Contains(strings.ToLower(userName), cleaned) {
			return id, nil
		}
	}
	return "", gorm.ErrRecordNotFound
}

func (m *mockImportStore) WipeAll() error {
	if m.wipeErr != nil {
		return m.wipeErr
	}
	m.wiped = true
	m.departments = map[string]*Department{}
	m.locations = map[string]uint{}
	m.supervisors = map[uint]string{}
	return nil
}

func standardFile(name string, dataRows ...[]string) ImportFile {
	rows := [][]string{{"Bahagian", "Lokasi Terkini", "Pegawai Penempatan"}}
	rows = append(rows, dataRows...)
	return ImportFile{Name: name, Rows: rows}
}

func TestDetectLayout(t *testing.T) {
	t.Run("standard layout with synonym headers", func(t *testing.T) {
		cm, err := detectLayout([]string{"Jabatan", "Lokasi", "Pegawai Penyelia"})
		require.NoError(t, err)
		assert.Equal(t, layoutStandard, cm.layout)
		assert.Equal(t, 0, cm.dept)
		assert.Equal(t, 1, cm.location)
		assert.Equal(t, 2, cm.supervisor)
	})

	t.Run("multi-line asset export wins when all six headers present", func(t *testing.T) {
		cm, err := detectLayout([]string{
			"Bil", "No. Siri Pendaftaran", "Maklumat Aset",
			"Lokasi Semasa", "Pengguna", "Bahagian",
		})
		require.NoError(t, err)
		assert.Equal(t, layoutAssetMultiLine, cm.layout)
		assert.Equal(t, 5, cm.dept)
		assert.Equal(t, 3, cm.location)
		assert.Equal(t, 4, cm.supervisor)
		assert.Equal(t, 1, cm.regNumber)
	})

	t.Run("missing columns", func(t *testing.T) {
		_, err := detectLayout([]string{"Bahagian", "Catatan"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing required columns")
	})
}

func TestImport(t *testing.T) {
	t.Run("creates departments and locations with dedup", func(t *testing.T) {
		store := newMockImportStore()
		importer := NewImporter(store)

		result, err := importer.Import([]ImportFile{
			standardFile("dept.xlsx",
				[]string{"Bahagian Kewangan", "Aras 3", "Ali"},
				[]string{"Bahagian Kewangan", "Aras 4", ""},
				[]string{"Bahagian Teknologi", "Aras 3", ""},
			),
		}, false)
		require.NoError(t, err)

		assert.Equal(t, 2, result.DepartmentsCreated)
		assert.Equal(t, 3, result.LocationsCreated)
		assert.Equal(t, 3, result.TotalRows)
		assert.Empty(t, result.Errors)
	})

	t.Run("rows missing department or location are skipped", func(t *testing.T) {
		store := newMockImportStore()
		importer := NewImporter(store)

		result, err := importer.Import([]ImportFile{
			standardFile("dept.xlsx",
				[]string{"Bahagian Kewangan", "Aras 3", ""},
				[]string{"", "Aras 4", ""},
				[]string{"Bahagian Teknologi", "", ""},
			),
		}, false)
		require.NoError(t, err)

		assert.Equal(t, 1, result.TotalRows)
		assert.Equal(t, 1, result.DepartmentsCreated)
	})

	t.Run("multi-line continuation rows are skipped", func(t *testing.T) {
		store := newMockImportStore()
		importer := NewImporter(store)

		file := ImportFile{
			Name: "aset.xlsx",
			Rows: [][]string{
				{"Bil", "No. Siri Pendaftaran", "Maklumat Aset", "Lokasi Semasa", "Pengguna", "Bahagian"},
				{"1", "KEW/2024/001", "Laptop", "Aras 3", "Ali", "Bahagian Kewangan"},
				{"", "", "Monitor 24in", "", "", ""},
				{"2", "KEW/2024/002", "Printer", "Aras 3", "", "Bahagian Kewangan"},
			},
		}

		result, err := importer.Import([]ImportFile{file}, false)
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalRows)
		assert.Equal(t, 1, result.DepartmentsCreated)
		assert.Equal(t, 1, result.LocationsCreated)
	})

	t.Run("existing department is matched by acronym", func(t *testing.T) {
		store := newMockImportStore()
		acr := "BKW"
		store.departments["Bahagian Kewangan"] = &Department{ID: 7, Name: "Bahagian Kewangan", Acronym: &acr}
		importer := NewImporter(store)

		result, err := importer.Import([]ImportFile{
			standardFile("dept.xlsx", []string{"bkw", "Aras 3", ""}),
		}, false)
		require.NoError(t, err)

		assert.Equal(t, 0, result.DepartmentsCreated)
		assert.Equal(t, 1, result.LocationsCreated)
	})

	t.Run("supervisor resolves to a user id when one matches", func(t *testing.T) {
		store := newMockImportStore()
		store.users["Ali Bin Abu"] = "ali_1234"
		importer := NewImporter(store)

		_, err := importer.Import([]ImportFile{
			standardFile("dept.xlsx",
				[]string{"Bahagian Kewangan", "Aras 3", "Ali Bin Abu"},
				[]string{"Bahagian Kewangan", "Aras 4", "Orang Luar"},
			),
		}, false)
		require.NoError(t, err)

		assert.Equal(t, "ali_1234", store.supervisors[1])
		assert.Equal(t, "Orang Luar", store.supervisors[2])
	})

	t.Run("existing location gets its supervisor updated", func(t *testing.T) {
		store := newMockImportStore()
		store.departments["Bahagian Kewangan"] = &Department{ID: 7, Name: "Bahagian Kewangan"}
		store.locations[locKey(7, "Aras 3")] = 42
		importer := NewImporter(store)

		result, err := importer.Import([]ImportFile{
			standardFile("dept.xlsx", []string{"Bahagian Kewangan", "Aras 3", "Siti"}),
		}, false)
		require.NoError(t, err)

		assert.Equal(t, 0, result.LocationsCreated)
		assert.Equal(t, "Siti", store.supervisors[42])
	})

	t.Run("file errors are collected, not fatal", func(t *testing.T) {
		store := newMockImportStore()
		importer := NewImporter(store)

		result, err := importer.Import([]ImportFile{
			{Name: "empty.xlsx", Rows: [][]string{{"Bahagian", "Lokasi"}}},
			{Name: "bad.xlsx", Rows: [][]string{{"Nama", "Catatan"}, {"a", "b"}}},
			standardFile("good.xlsx", []string{"Bahagian Kewangan", "Aras 3", ""}),
		}, false)
		require.NoError(t, err)

		require.Len(t, result.Errors, 2)
		assert.Contains(t, result.Errors[0], "File empty.xlsx: No data rows found")
		assert.Contains(t, result.Errors[1], "File bad.xlsx:")
		assert.Equal(t, 1, result.TotalRows)
	})

	t.Run("overwrite wipes before any file is read", func(t *testing.T) {
		store := newMockImportStore()
		store.departments["Old"] = &Department{ID: 1, Name: "Old"}
		importer := NewImporter(store)

		_, err := importer.Import([]ImportFile{
			standardFile("dept.xlsx", []string{"Bahagian Kewangan", "Aras 3", ""}),
		}, true)
		require.NoError(t, err)

		assert.True(t, store.wiped)
		_, found := store.departments["Old"]
		assert.False(t, found)
	})

	t.Run("wipe clears dependents before locations and departments", func(t *testing.T) {
		index := func(stmt string) int {
			for i, s := range wipeStatements {
				if strings.Contains(s, stmt) {
					return i
				}
			}
			t.Fatalf("wipe does not touch %q", stmt)
			return -1
		}

		// Rows referencing a location or department must go first, or the
		// delete trips their foreign keys on any populated system.
		assert.Less(t, index("DELETE FROM inspections"), index("DELETE FROM locations"))
		assert.Less(t, index("DELETE FROM cross_audit_assignments"), index("DELETE FROM departments"))
		assert.Less(t, index("UPDATE users SET department_id = NULL"), index("DELETE FROM departments"))
		assert.Less(t, index("DELETE FROM asset_inspections"), index("DELETE FROM asset_upload_batches"))
		assert.Less(t, index("DELETE FROM locations"), index("DELETE FROM departments"))
	})

	t.Run("wipe failure aborts the whole import", func(t *testing.T) {
		store := newMockImportStore()
		store.wipeErr = errors.New("db down")
		importer := NewImporter(store)

		_, err := importer.Import([]ImportFile{
			standardFile("dept.xlsx", []string{"Bahagian Kewangan", "Aras 3", ""}),
		}, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to clear existing data")
	})
}
