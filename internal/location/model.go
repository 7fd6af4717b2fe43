package location

import "time"

type Location struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string    `json:"name"`
	DepartmentID  *uint     `json:"departmentId"`
	Supervisor    *string   `json:"supervisor"`
	ContactNumber *string   `json:"contactNumber"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Location) TableName() string {
	return "locations"
}

// LocationView is the list shape with the owning department and, when the
// supervisor column holds a user id, the resolved user name joined in.
type LocationView struct {
	ID             uint    `json:"id"`
	Name           string  `json:"name"`
	DepartmentID   *uint   `json:"departmentId"`
	DepartmentName *string `json:"departmentName"`
	Supervisor     *string `json:"supervisor"`
	SupervisorName *string `json:"supervisorName"`
	ContactNumber  *string `json:"contactNumber"`
}
