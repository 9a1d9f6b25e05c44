package models

import (
	"time"
)

// ReportType 用户反馈类型
type ReportType string

const (
	ReportTypeClosed        ReportType = "closed"
	ReportTypeIncorrectInfo ReportType = "incorrect_info"
	ReportTypeOther         ReportType = "other"
)

// Valid 判断是否为已知的反馈类型
func (t ReportType) Valid() bool {
	switch t {
	case ReportTypeClosed, ReportTypeIncorrectInfo, ReportTypeOther:
		return true
	}
	return false
}

// UserReport represents one user flagging one resource.
// ResourceID is a plain reference; reports survive removal of the resource.
type UserReport struct {
	ID            string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ResourceID    string     `json:"resourceId" gorm:"column:resource_id;type:varchar(36);not null;index"`
	ReportType    ReportType `json:"reportType" gorm:"column:report_type;type:varchar(50);not null"`
	ReportDetails *string    `json:"reportDetails" gorm:"column:report_details;type:text"`
	UserIP        *string    `json:"userIp" gorm:"column:user_ip;type:varchar(50)"`
	ReportedAt    time.Time  `json:"reportedAt" gorm:"column:reported_at;not null"`
}

// TableName specifies the table name for the UserReport model
func (UserReport) TableName() string {
	return "user_reports"
}
