package models

import "time"

// Submission 用户提交的候选资源，等待人工审核，写入后不再修改
type Submission struct {
	ID                  string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name                string    `json:"name" gorm:"type:text;not null"`
	Type                string    `json:"type" gorm:"type:varchar(50);not null"`
	Address             string    `json:"address" gorm:"type:text;not null"`
	Latitude            string    `json:"latitude" gorm:"type:text;not null"`
	Longitude           string    `json:"longitude" gorm:"type:text;not null"`
	Hours               *string   `json:"hours" gorm:"type:text"`
	PhotoURL            *string   `json:"photoUrl" gorm:"column:photo_url;type:text"`
	Phone               *string   `json:"phone" gorm:"type:text"`
	AppointmentRequired bool      `json:"appointmentRequired" gorm:"not null;default:false"`
	SubmittedAt         time.Time `json:"submittedAt" gorm:"column:submitted_at;not null;index"`
}

// TableName 指定表名
func (Submission) TableName() string {
	return "submissions"
}
