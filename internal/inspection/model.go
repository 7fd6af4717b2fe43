package inspection

import "time"

// Statuses an inspection can be in.
const (
	StatusPending  = "Pending"
	StatusComplete = "Complete"
)

func validStatus(s string) bool {
	return s == StatusPending || s == StatusComplete
}

type Inspection struct {
	ID             uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	LocationID     *uint     `json:"locationId"`
	InspectionDate time.Time `gorm:"type:date" json:"inspectionDate"`
	Status         string    `json:"status"`
	Auditor1ID     *string   `json:"auditor1Id"`
	Auditor2ID     *string   `json:"auditor2Id"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Inspection) TableName() string {
	return "inspections"
}

// InspectionView is the list shape with location, department and auditor
// names joined in.
type InspectionView struct {
	ID             uint      `json:"id"`
	LocationID     *uint     `json:"location_id"`
	LocationName   *string   `json:"location_name"`
	DepartmentID   *uint     `json:"department_id"`
	DepartmentName *string   `json:"department_name"`
	InspectionDate time.Time `json:"inspection_date"`
	Status         string    `json:"status"`
	Auditor1ID     *string   `json:"auditor1_id"`
	Auditor1Name   *string   `json:"auditor1_name"`
	Auditor2ID     *string   `json:"auditor2_id"`
	Auditor2Name   *string   `json:"auditor2_name"`
}
