package department

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/utils"
)

var (
	ErrNotFound            = errors.New("department not found")
	ErrNameRequired        = errors.New("department name is required")
	ErrNoFiles             = errors.New("no files uploaded")
	ErrSummaryFileNotFound = errors.New("summary file not found")
)

type Service interface {
	Create(name, acronym string) (*Department, error)
	List() ([]Department, error)
	Get(id uint) (*Department, error)
	Update(id uint, name, acronym *string, totalAssets *int64) (*Department, error)
	Delete(id uint) error

	UploadSummaryFiles(departmentID uint, files []*multipart.FileHeader) ([]SummaryFile, error)
	ListSummaryFiles(departmentID uint) ([]SummaryFile, error)
	DeleteSummaryFile(id uint) error

	BulkImport(files []*multipart.FileHeader, overwrite bool) (*ImportResult, error)
}

type service struct {
	repo      Repository
	importer  *Importer
	uploadDir string
}

func NewService(repo Repository, importer *Importer, uploadDir string) Service {
	return &service{repo: repo, importer: importer, uploadDir: uploadDir}
}

func (s *service) Create(name, acronym string) (*Department, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	dept := &Department{Name: name}
	if acronym != "" {
		dept.Acronym = &acronym
	}
	if err := s.repo.Create(dept); err != nil {
		return nil, err
	}
	return dept, nil
}

func (s *service) List() ([]Department, error) {
	return s.repo.FindAll()
}

func (s *service) Get(id uint) (*Department, error) {
	dept, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return dept, nil
}

func (s *service) Update(id uint, name, acronym *string, totalAssets *int64) (*Department, error) {
	dept, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		if *name == "" {
			return nil, ErrNameRequired
		}
		dept.Name = *name
	}
	if acronym != nil {
		dept.Acronym = acronym
	}
	if totalAssets != nil {
		dept.TotalAssets = *totalAssets
	}

	if err := s.repo.Update(dept); err != nil {
		return nil, err
	}
	return dept, nil
}

func (s *service) Delete(id uint) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// UploadSummaryFiles stores the documents on disk under a per-department
// directory and records one row per file.
func (s *service) UploadSummaryFiles(departmentID uint, files []*multipart.FileHeader) ([]SummaryFile, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if _, err := s.Get(departmentID); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.uploadDir, "department-summaries", fmt.Sprint(departmentID))

	var saved []SummaryFile
	for _, fh := range files {
		path, err := utils.SaveUploadedFile(fh, dir)
		if err != nil {
			return nil, err
		}

		row := SummaryFile{
			DepartmentID: departmentID,
			Filename:     fh.Filename,
			Filepath:     path,
			Filesize:     fh.Size,
		}
		if err := s.repo.CreateSummaryFile(&row); err != nil {
			os.Remove(path)
			return nil, err
		}
		saved = append(saved, row)
	}

	return saved, nil
}

func (s *service) ListSummaryFiles(departmentID uint) ([]SummaryFile, error) {
	if _, err := s.Get(departmentID); err != nil {
		return nil, err
	}
	return s.repo.FindSummaryFiles(departmentID)
}

func (s *service) DeleteSummaryFile(id uint) error {
	file, err := s.repo.FindSummaryFileByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSummaryFileNotFound
		}
		return err
	}

	if err := os.Remove(file.Filepath); err != nil && !os.IsNotExist(err) {
		log.Printf("⚠️ Failed to remove summary file %s: %v", file.Filepath, err)
	}

	return s.repo.DeleteSummaryFile(id)
}

// BulkImport validates and parses every uploaded spreadsheet, then hands the
// parsed files to the importer. A file that fails validation or parsing is
// reported in the error list and skipped, it does not abort the batch.
func (s *service) BulkImport(files []*multipart.FileHeader, overwrite bool) (*ImportResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if err := utils.ValidateBatchSize(files); err != nil {
		return nil, err
	}

	var parsed []ImportFile
	var fileErrors []string
	for _, fh := range files {
		data, err := utils.ValidateSpreadsheetUpload(fh)
		if err != nil {
			fileErrors = append(fileErrors, fmt.Sprintf("File %s: %v", fh.Filename, err))
			continue
		}

		rows, err := utils.ParseTabularFile(fh.Filename, data)
		if err != nil {
			fileErrors = append(fileErrors, fmt.Sprintf("File %s: %v", fh.Filename, err))
			continue
		}

		parsed = append(parsed, ImportFile{Name: fh.Filename, Rows: rows})
	}

	result, err := s.importer.Import(parsed, overwrite)
	if err != nil {
		return nil, err
	}

	result.Errors = append(fileErrors, result.Errors...)
	return result, nil
}
