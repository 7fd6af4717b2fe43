package user

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/internal/auth"
	"github.com/amirulhaziq/inspectable-backend/utils"
)

// Required spreadsheet columns, matched case-insensitively after trimming.
// Phone and Personal Email are optional.
var requiredUserColumns = []string{"Staff ID", "Name", "Email", "Department", "Role"}

// credentialCap bounds the credentials list in the import response.
const credentialCap = 200

// NamedFile is one parsed upload handed to ImportUsers.
type NamedFile struct {
	Name string
	Rows [][]string
}

// ImportedCredential carries a generated temporary password back to the
// admin who ran the import. Passwords are never stored in plain text.
type ImportedCredential struct {
	StaffID           string `json:"staff_id"`
	UserID            string `json:"user_id"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	TemporaryPassword string `json:"temporary_password"`
}

type ImportResult struct {
	Imported       int                  `json:"users_imported"`
	Skipped        int                  `json:"users_skipped"`
	FilesProcessed int                  `json:"files_processed"`
	Errors         []string             `json:"errors"`
	Credentials    []ImportedCredential `json:"credentials"`
	Message        string               `json:"message"`
}

type userColumnMap struct {
	staffID       int
	name          int
	email         int
	department    int
	role          int
	phone         int
	personalEmail int
}

func userHeaderIndex(headers []string, name string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func mapUserColumns(filename string, headers []string) (userColumnMap, error) {
	for _, col := range requiredUserColumns {
		if userHeaderIndex(headers, col) < 0 {
			return userColumnMap{}, fmt.Errorf("missing required column '%s' in file: %s", col, filename)
		}
	}
	return userColumnMap{
		staffID:       userHeaderIndex(headers, "staff id"),
		name:          userHeaderIndex(headers, "name"),
		email:         userHeaderIndex(headers, "email"),
		department:    userHeaderIndex(headers, "department"),
		role:          userHeaderIndex(headers, "role"),
		phone:         userHeaderIndex(headers, "phone"),
		personalEmail: userHeaderIndex(headers, "personal email"),
	}, nil
}

type importRow struct {
	StaffID       string
	Name          string
	Email         string
	Department    string
	Role          string
	Phone         string
	PersonalEmail string
}

// ImportUsers creates accounts from spreadsheet rows. File-level problems
// (bad format, missing columns) abort the whole import; row-level problems
// skip the row and record an error. Imported accounts are verified, hold a
// 12-character temporary password and must change it on first login.
func (s *service) ImportUsers(files []NamedFile) (*ImportResult, error) {
	var allRows []importRow
	for _, f := range files {
		if len(f.Rows) < 2 {
			return nil, fmt.Errorf("error in '%s': no data rows found", f.Name)
		}
		cm, err := mapUserColumns(f.Name, f.Rows[0])
		if err != nil {
			return nil, err
		}
		for _, row := range f.Rows[1:] {
			allRows = append(allRows, importRow{
				StaffID:       utils.RowCell(row, cm.staffID),
				Name:          utils.RowCell(row, cm.name),
				Email:         utils.RowCell(row, cm.email),
				Department:    utils.RowCell(row, cm.department),
				Role:          utils.RowCell(row, cm.role),
				Phone:         utils.RowCell(row, cm.phone),
				PersonalEmail: utils.RowCell(row, cm.personalEmail),
			})
		}
	}

	result := &ImportResult{
		FilesProcessed: len(files),
		Errors:         []string{},
		Credentials:    []ImportedCredential{},
	}

	rowNumber := 1
	for _, row := range allRows {
		rowNumber++

		if row.StaffID == "" || row.Name == "" || row.Email == "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Row %d: Missing required fields (Staff ID, Name, or Email)", rowNumber))
			result.Skipped++
			continue
		}
		if !auth.ValidStaffID(row.StaffID) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Row %d: Invalid Staff ID '%s' (must be 4 digits)", rowNumber, row.StaffID))
			result.Skipped++
			continue
		}
		if !auth.ValidEmail(row.Email) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Row %d: Invalid email format '%s'", rowNumber, row.Email))
			result.Skipped++
			continue
		}
		role, ok := auth.ParseRole(row.Role)
		if !ok {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Row %d: Invalid role '%s' (must be: Admin, Asset Officer, Auditor, or Viewer)", rowNumber, row.Role))
			result.Skipped++
			continue
		}

		taken, err := s.repo.StaffIDExists(row.StaffID)
		if err != nil {
			return nil, err
		}
		if taken {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Row %d: Staff ID '%s' already exists", rowNumber, row.StaffID))
			result.Skipped++
			continue
		}
		taken, err = s.repo.EmailExists(row.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Row %d: Email '%s' already exists", rowNumber, row.Email))
			result.Skipped++
			continue
		}

		// A missing department is recorded but does not skip the row; the
		// account is created without one.
		departmentID := s.resolveDepartment(row.Department)
		if departmentID == nil && row.Department != "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Row %d: Department '%s' not found", rowNumber, row.Department))
		}

		userID := strings.ToLower(strings.ReplaceAll(row.Name, " ", "")) + "_" + row.StaffID

		tempPassword, err := utils.GenerateTempPassword(12)
		if err != nil {
			return nil, err
		}
		hash, err := utils.HashPassword(tempPassword)
		if err != nil {
			return nil, err
		}

		u := &auth.User{
			ID:                 userID,
			StaffID:            row.StaffID,
			Name:               row.Name,
			Email:              row.Email,
			PersonalEmail:      optionalString(row.PersonalEmail),
			Phone:              optionalString(row.Phone),
			DepartmentID:       departmentID,
			PasswordHash:       hash,
			MustChangePassword: true,
			EmailVerified:      true,
			Status:             auth.StatusVerified,
		}
		if err := s.repo.Create(u, []auth.Role{role}); err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Row %d: Database error - %v", rowNumber, err))
			result.Skipped++
			continue
		}
		result.Imported++

		if len(result.Credentials) < credentialCap {
			result.Credentials = append(result.Credentials, ImportedCredential{
				StaffID:           row.StaffID,
				UserID:            userID,
				Email:             row.Email,
				Name:              row.Name,
				TemporaryPassword: tempPassword,
			})
		}
	}

	result.Message = importMessage(len(files), result.Imported, result.Skipped)
	return result, nil
}

// resolveDepartment maps a spreadsheet department name to an id, trying an
// exact name/acronym match before a partial one.
func (s *service) resolveDepartment(name string) *uint {
	if name == "" {
		return nil
	}
	dept, err := s.depts.FindByNameOrAcronym(name)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		dept, err = s.depts.FindByNameLike(name)
		if err != nil {
			return nil
		}
	}
	return &dept.ID
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func importMessage(fileCount, imported, skipped int) string {
	suffix := ""
	if skipped > 0 {
		suffix = fmt.Sprintf(" (%d skipped)", skipped)
	}
	if fileCount == 1 {
		return fmt.Sprintf("Successfully imported %d users%s", imported, suffix)
	}
	return fmt.Sprintf("Successfully processed %d files: imported %d users%s", fileCount, imported, suffix)
}
