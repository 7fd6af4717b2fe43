package asset

import "time"

// UploadBatch is one ingestion run. A multi-file run still produces a
// single batch, the filename column carries a summary of the names.
type UploadBatch struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UploadedBy   *string   `json:"uploaded_by"`
	Filename     string    `json:"filename"`
	TotalRecords int       `json:"total_records"`
	Notes        string    `json:"notes"`
	UploadDate   time.Time `gorm:"autoCreateTime" json:"upload_date"`
}

func (UploadBatch) TableName() string {
	return "asset_upload_batches"
}

// BatchView adds the uploader's display name to a batch listing.
type BatchView struct {
	ID             uint      `json:"id"`
	UploadedBy     *string   `json:"uploaded_by"`
	UploadedByName *string   `json:"uploaded_by_name"`
	Filename       string    `json:"filename"`
	TotalRecords   int       `json:"total_records"`
	Notes          string    `json:"notes"`
	UploadDate     time.Time `json:"upload_date"`
}

// InspectionRecord is one ingested asset row. The spreadsheet's original
// Bahagian text is kept alongside the resolved department id, unresolvable
// names leave the id null.
type InspectionRecord struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	BatchID           uint       `json:"batch_id"`
	Label             string     `json:"label"`
	JenisAset         string     `json:"jenis_aset"`
	PegawaiPenempatan string     `json:"pegawai_penempatan"`
	Bahagian          string     `json:"bahagian"`
	LokasiTerkini     string     `json:"lokasi_terkini"`
	DepartmentID      *uint      `json:"department_id"`
	IsInspected       bool       `json:"is_inspected"`
	InspectedDate     *time.Time `gorm:"type:date" json:"inspected_date"`
	InspectedBy       *string    `json:"inspected_by"`
	Notes             *string    `json:"notes"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (InspectionRecord) TableName() string {
	return "asset_inspections"
}

// RecordView is a detailed listing row with its joined display fields. The
// supervisor comes from the location registry, matched on department and
// location name, so it reflects the current registry rather than whatever
// the spreadsheet carried.
type RecordView struct {
	ID                uint       `json:"id"`
	BatchID           uint       `json:"batch_id"`
	Label             string     `json:"label"`
	JenisAset         string     `json:"jenis_aset"`
	PegawaiPenempatan string     `json:"pegawai_penempatan"`
	Bahagian          string     `json:"bahagian"`
	LokasiTerkini     string     `json:"lokasi_terkini"`
	DepartmentID      *uint      `json:"department_id"`
	DepartmentName    *string    `json:"department_name"`
	IsInspected       bool       `json:"is_inspected"`
	InspectedDate     *time.Time `json:"inspected_date"`
	InspectedBy       *string    `json:"inspected_by"`
	InspectedByName   *string    `json:"inspected_by_name"`
	Notes             *string    `json:"notes"`
	BatchFilename     *string    `json:"batch_filename"`
	UploadDate        *time.Time `json:"upload_date"`
	Supervisor        *string    `json:"supervisor"`
	CreatedAt         time.Time  `json:"created_at"`
}

// DepartmentSummary aggregates inspection progress for one department.
type DepartmentSummary struct {
	DepartmentID        uint    `json:"department_id"`
	DepartmentName      string  `json:"department_name"`
	TotalAssets         int64   `json:"total_assets"`
	AssetsInspected     int64   `json:"assets_inspected"`
	AssetsNotInspected  int64   `json:"assets_not_inspected"`
	PercentageInspected float64 `json:"percentage_inspected"`
}

// OverallSummary totals progress across every department.
type OverallSummary struct {
	TotalAssets         int64   `json:"total_assets"`
	AssetsInspected     int64   `json:"assets_inspected"`
	AssetsNotInspected  int64   `json:"assets_not_inspected"`
	PercentageInspected float64 `json:"percentage_inspected"`
}

// SummaryResult is the full summary payload.
type SummaryResult struct {
	Summary []DepartmentSummary `json:"summary"`
	Overall OverallSummary      `json:"overall"`
}

// RecordFilter narrows the detailed asset listing.
type RecordFilter struct {
	DepartmentID *uint
	Inspected    *bool
	BatchID      *uint
	Search       string
}
