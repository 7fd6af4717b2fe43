package asset

import (
	"math"

	"gorm.io/gorm"
)

type Repository interface {
	CreateBatch(batch *UploadBatch) error
	InsertRecords(records []InspectionRecord) error
	UpdateBatchTotal(batchID uint, total int) error
	ListBatches() ([]BatchView, error)
	FindBatchByID(id uint) (*UploadBatch, error)
	DeleteBatch(id uint) error
	Summary(departmentID *uint) ([]DepartmentSummary, error)
	ListRecords(filter RecordFilter) ([]RecordView, error)
	FindRecordByID(id uint) (*InspectionRecord, error)
	UpdateRecord(id uint, updates map[string]interface{}) error
	WipeAll() error
	UserIsAdmin(userID string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateBatch(batch *UploadBatch) error {
	return r.db.Create(batch).Error
}

func (r *repository) InsertRecords(records []InspectionRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.CreateInBatches(records, 500).Error
}

func (r *repository) UpdateBatchTotal(batchID uint, total int) error {
	return r.db.Model(&UploadBatch{}).
		Where("id = ?", batchID).
		Update("total_records", total).Error
}

func (r *repository) ListBatches() ([]BatchView, error) {
	var batches []BatchView
	err := r.db.Table("asset_upload_batches b").
		Select("b.id, b.uploaded_by, u.name AS uploaded_by_name, b.filename, b.total_records, b.notes, b.upload_date").
		Joins("LEFT JOIN users u ON b.uploaded_by = u.id").
		Order("b.upload_date DESC").
		Scan(&batches).Error
	return batches, err
}

func (r *repository) FindBatchByID(id uint) (*UploadBatch, error) {
	var batch UploadBatch
	if err := r.db.First(&batch, id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// DeleteBatch relies on the batch_id foreign key cascading to the records.
func (r *repository) DeleteBatch(id uint) error {
	return r.db.Delete(&UploadBatch{}, id).Error
}

func (r *repository) Summary(departmentID *uint) ([]DepartmentSummary, error) {
	q := r.db.Table("departments d").
		Select(`d.id AS department_id,
			d.name AS department_name,
			COUNT(a.id) AS total_assets,
			COALESCE(SUM(CASE WHEN a.is_inspected THEN 1 ELSE 0 END), 0) AS assets_inspected,
			COALESCE(SUM(CASE WHEN NOT a.is_inspected THEN 1 ELSE 0 END), 0) AS assets_not_inspected`).
		Joins("LEFT JOIN asset_inspections a ON d.id = a.department_id").
		Group("d.id, d.name").
		Order("d.name")

	if departmentID != nil {
		q = q.Where("d.id = ?", *departmentID)
	}

	var summary []DepartmentSummary
	if err := q.Scan(&summary).Error; err != nil {
		return nil, err
	}
	for i := range summary {
		summary[i].PercentageInspected = percentage(summary[i].AssetsInspected, summary[i].TotalAssets)
	}
	return summary, nil
}

const recordViewSelect = `a.id, a.batch_id, a.label, a.jenis_aset, a.pegawai_penempatan,
	a.bahagian, a.lokasi_terkini, a.department_id, d.name AS department_name,
	a.is_inspected, a.inspected_date, a.inspected_by, u.name AS inspected_by_name,
	a.notes, b.filename AS batch_filename, b.upload_date, l.supervisor AS supervisor,
	a.created_at`

func (r *repository) ListRecords(filter RecordFilter) ([]RecordView, error) {
	q := r.db.Table("asset_inspections a").
		Select(recordViewSelect).
		Joins("LEFT JOIN departments d ON a.department_id = d.id").
		Joins("LEFT JOIN asset_upload_batches b ON a.batch_id = b.id").
		Joins("LEFT JOIN users u ON a.inspected_by = u.id").
		Joins("LEFT JOIN locations l ON l.department_id = a.department_id AND l.name = a.lokasi_terkini")

	if filter.DepartmentID != nil {
		q = q.Where("a.department_id = ?", *filter.DepartmentID)
	}
	if filter.Inspected != nil {
		q = q.Where("a.is_inspected = ?", *filter.Inspected)
	}
	if filter.BatchID != nil {
		q = q.Where("a.batch_id = ?", *filter.BatchID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(
			"a.label ILIKE ? OR a.jenis_aset ILIKE ? OR l.supervisor ILIKE ? OR a.lokasi_terkini ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	var records []RecordView
	err := q.Order("a.created_at DESC").Scan(&records).Error
	return records, err
}

func (r *repository) FindRecordByID(id uint) (*InspectionRecord, error) {
	var record InspectionRecord
	if err := r.db.First(&record, id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) UpdateRecord(id uint, updates map[string]interface{}) error {
	return r.db.Model(&InspectionRecord{}).Where("id = ?", id).Updates(updates).Error
}

// WipeAll clears every ingested record and batch. Departments and
// locations are untouched, only the asset data resets.
func (r *repository) WipeAll() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM asset_inspections").Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM asset_upload_batches").Error
	})
}

// UserIsAdmin checks the role directly so ingestion never trusts a stale
// token claim.
func (r *repository) UserIsAdmin(userID string) (bool, error) {
	var count int64
	err := r.db.Table("user_roles").
		Where("user_id = ? AND role = ?", userID, "Admin").
		Count(&count).Error
	return count > 0, err
}

// percentage rounds to two decimal places.
func percentage(inspected, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(inspected)/float64(total)*10000) / 100
}
