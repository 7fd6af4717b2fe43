package department

import "time"

type Department struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `json:"name"`
	Acronym     *string   `json:"acronym"`
	TotalAssets int64     `json:"totalAssets"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Department) TableName() string {
	return "departments"
}

// SummaryFile is an uploaded reference document attached to a department,
// stored on disk under a per-department directory.
type SummaryFile struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DepartmentID uint      `json:"departmentId"`
	Filename     string    `json:"filename"`
	Filepath     string    `json:"-"`
	Filesize     int64     `json:"filesize"`
	UploadedAt   time.Time `gorm:"autoCreateTime" json:"uploadedAt"`
}

func (SummaryFile) TableName() string {
	return "department_summary_files"
}
