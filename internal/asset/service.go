package asset

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"gorm.io/gorm"

	"github.com/amirulhaziq/inspectable-backend/internal/department"
	"github.com/amirulhaziq/inspectable-backend/utils"
)

var (
	ErrNotAdmin       = errors.New("only Admin can upload files")
	ErrNoFiles        = errors.New("no file uploaded")
	ErrBatchNotFound  = errors.New("batch not found")
	ErrRecordNotFound = errors.New("asset record not found")
)

// IngestFileCount reports how many rows one file contributed.
type IngestFileCount struct {
	Filename string `json:"filename"`
	Rows     int    `json:"rows"`
}

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	BatchID  uint              `json:"batch_id"`
	Inserted int               `json:"total_records"`
	Files    []IngestFileCount `json:"files"`
	Message  string            `json:"message"`
}

// MarkInspectedInput updates one record's inspection state. IsInspected is
// optional in the request body and defaults to true when omitted.
type MarkInspectedInput struct {
	IsInspected   *bool
	InspectedBy   *string
	InspectedDate string
	Notes         *string
}

type Service interface {
	Ingest(userID string, uploads []*multipart.FileHeader, notes string, overwrite bool) (*IngestResult, error)
	ListBatches() ([]BatchView, error)
	DeleteBatch(userID string, id uint) error
	GetSummary(departmentID *uint) (*SummaryResult, error)
	ListRecords(filter RecordFilter) ([]RecordView, error)
	MarkInspected(id uint, in MarkInspectedInput) error
	ExportSummary(departmentID *uint, format string) ([]byte, string, string, error)
}

type service struct {
	repo     Repository
	depts    department.Repository
	exporter SummaryExporter
}

func NewService(repo Repository, depts department.Repository) Service {
	return &service{repo: repo, depts: depts, exporter: NewSummaryExporter()}
}

// Ingest runs the spreadsheet pipeline: admin check, optional wipe, then
// validate and parse every file before anything is inserted. A failure in
// any file aborts the whole run; only the row-level inserts tolerate bad
// rows by skipping them.
func (s *service) Ingest(userID string, uploads []*multipart.FileHeader, notes string, overwrite bool) (*IngestResult, error) {
	isAdmin, err := s.repo.UserIsAdmin(userID)
	if err != nil {
		return nil, err
	}
	if !isAdmin {
		return nil, ErrNotAdmin
	}

	if len(uploads) == 0 {
		return nil, ErrNoFiles
	}
	if err := utils.ValidateBatchSize(uploads); err != nil {
		return nil, err
	}

	if overwrite {
		if err := s.repo.WipeAll(); err != nil {
			return nil, fmt.Errorf("failed to clear existing asset data: %w", err)
		}
		log.Println("⚠️ Existing asset batches wiped before reload")
	}

	// Validate and parse everything up front.
	type parsedFile struct {
		name   string
		header []string
		rows   [][]string
	}
	var parsed []parsedFile
	for _, fh := range uploads {
		data, err := utils.ValidateSpreadsheetUpload(fh)
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", fh.Filename, err)
		}
		rows, err := utils.ParseTabularFile(fh.Filename, data)
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", fh.Filename, err)
		}
		if len(rows) < 2 {
			return nil, fmt.Errorf("file %s: no data rows found", fh.Filename)
		}
		parsed = append(parsed, parsedFile{name: fh.Filename, header: rows[0], rows: rows[1:]})
	}

	cm, err := mapAssetColumns(parsed[0].name, parsed[0].header)
	if err != nil {
		return nil, err
	}
	for _, f := range parsed[1:] {
		if !sameHeader(parsed[0].header, f.header) {
			return nil, fmt.Errorf("file %s: column list differs from %s, every file must share the same columns", f.name, parsed[0].name)
		}
	}

	names := make([]string, len(parsed))
	var extracted []extractedRecord
	fileCounts := make([]IngestFileCount, len(parsed))
	for i, f := range parsed {
		names[i] = f.name
		records := extractRecords(cm, len(f.header), f.rows)
		extracted = append(extracted, records...)
		fileCounts[i] = IngestFileCount{Filename: f.name, Rows: len(records)}
	}

	batch := &UploadBatch{
		UploadedBy:   &userID,
		Filename:     utils.SummarizeFilenames(names),
		TotalRecords: len(extracted),
		Notes:        notes,
	}
	if err := s.repo.CreateBatch(batch); err != nil {
		return nil, err
	}

	resolver := newDepartmentResolver(s.depts)
	records := make([]InspectionRecord, 0, len(extracted))
	for _, rec := range extracted {
		records = append(records, InspectionRecord{
			BatchID:           batch.ID,
			Label:             rec.Label,
			JenisAset:         rec.JenisAset,
			PegawaiPenempatan: rec.PegawaiPenempatan,
			Bahagian:          rec.Bahagian,
			LokasiTerkini:     rec.LokasiTerkini,
			DepartmentID:      resolver.resolve(rec.Bahagian),
		})
	}
	if err := s.repo.InsertRecords(records); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateBatchTotal(batch.ID, len(records)); err != nil {
		return nil, err
	}

	log.Printf("✅ Ingested %d asset records into batch %d (%s)", len(records), batch.ID, batch.Filename)
	return &IngestResult{
		BatchID:  batch.ID,
		Inserted: len(records),
		Files:    fileCounts,
		Message:  fmt.Sprintf("Successfully uploaded %d asset records", len(records)),
	}, nil
}

func (s *service) ListBatches() ([]BatchView, error) {
	return s.repo.ListBatches()
}

func (s *service) DeleteBatch(userID string, id uint) error {
	isAdmin, err := s.repo.UserIsAdmin(userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return ErrNotAdmin
	}

	if _, err := s.repo.FindBatchByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBatchNotFound
		}
		return err
	}
	return s.repo.DeleteBatch(id)
}

func (s *service) GetSummary(departmentID *uint) (*SummaryResult, error) {
	summary, err := s.repo.Summary(departmentID)
	if err != nil {
		return nil, err
	}

	var overall OverallSummary
	for _, row := range summary {
		overall.TotalAssets += row.TotalAssets
		overall.AssetsInspected += row.AssetsInspected
		overall.AssetsNotInspected += row.AssetsNotInspected
	}
	overall.PercentageInspected = percentage(overall.AssetsInspected, overall.TotalAssets)

	return &SummaryResult{Summary: summary, Overall: overall}, nil
}

func (s *service) ListRecords(filter RecordFilter) ([]RecordView, error) {
	return s.repo.ListRecords(filter)
}

func (s *service) MarkInspected(id uint, in MarkInspectedInput) error {
	if _, err := s.repo.FindRecordByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return err
	}

	inspected := true
	if in.IsInspected != nil {
		inspected = *in.IsInspected
	}

	var inspectedDate interface{}
	if in.InspectedDate != "" {
		parsed, err := time.Parse("2006-01-02", in.InspectedDate)
		if err != nil {
			return fmt.Errorf("invalid inspected_date: %w", err)
		}
		inspectedDate = parsed
	} else {
		inspectedDate = time.Now()
	}

	return s.repo.UpdateRecord(id, map[string]interface{}{
		"is_inspected":   inspected,
		"inspected_date": inspectedDate,
		"inspected_by":   in.InspectedBy,
		"notes":          in.Notes,
	})
}

func (s *service) ExportSummary(departmentID *uint, format string) ([]byte, string, string, error) {
	result, err := s.GetSummary(departmentID)
	if err != nil {
		return nil, "", "", err
	}
	return s.exporter.Export(format, result)
}
