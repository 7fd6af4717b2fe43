package auditlog

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog is one recorded privileged action: who did what, from where,
// and whether it succeeded.
type AuditLog struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *string        `gorm:"index" json:"user_id"` // nullable (e.g. failed login)
	Action    string         `gorm:"size:100;not null;index" json:"action"`
	Details   datatypes.JSON `json:"details"`
	IPAddress string         `gorm:"size:45" json:"ip_address"`
	Status    string         `gorm:"size:20;not null;index" json:"status"` // success/failure
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Statuses recorded against an entry.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Actions logged by the services.
const (
	ActionLogin             = "login"
	ActionAssignmentCreate  = "cross_audit_assignment_create"
	ActionAssignmentUpdate  = "cross_audit_assignment_update"
	ActionAssignmentDelete  = "cross_audit_assignment_delete"
	ActionAssetIngest       = "asset_ingest"
	ActionAssetBatchDelete  = "asset_batch_delete"
	ActionDepartmentImport  = "department_bulk_import"
	ActionUserImport        = "user_bulk_import"
	ActionUserVerify        = "user_verify"
	ActionStaffIDTransfer   = "staff_id_transfer"
)

// AuditLogResponse is the API shape with the actor's name joined in.
type AuditLogResponse struct {
	ID        uint           `json:"id"`
	UserID    *string        `json:"user_id"`
	Action    string         `json:"action"`
	Details   datatypes.JSON `json:"details"`
	IPAddress string         `json:"ip_address"`
	Status    string         `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UserName  *string        `json:"user_name,omitempty"`
}

// AuditLogFilter narrows a listing query.
type AuditLogFilter struct {
	UserID   *string    `json:"user_id"`
	Action   string     `json:"action"`
	Status   string     `json:"status"`
	FromDate *time.Time `json:"from_date"`
	ToDate   *time.Time `json:"to_date"`
	Page     int        `json:"page"`
	Limit    int        `json:"limit"`
}

// PaginatedAuditLogs wraps a page of results.
type PaginatedAuditLogs struct {
	Data       []AuditLogResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
