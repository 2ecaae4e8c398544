package models

import "github.com/google/uuid"

// 真题生命周期状态
const (
	PaperStatusPending   = "pending"
	PaperStatusApproved  = "approved"
	PaperStatusRejected  = "rejected"
	PaperStatusTakenDown = "taken_down"
)

// Paper 一份上传的真题。状态只通过 review/takedown 流转，记录从不物理删除。
type Paper struct {
	Base
	Title         string    `gorm:"not null" json:"title"`
	Subject       string    `gorm:"not null;index" json:"subject"`
	Year          int       `gorm:"not null" json:"year"`
	Teacher       string    `gorm:"index" json:"teacher"`
	MinioBucket   string    `gorm:"not null" json:"-"`
	ObjectName    string    `gorm:"not null" json:"-"`
	FileName      string    `gorm:"not null" json:"file_name"`
	SizeBytes     int64     `gorm:"not null" json:"size_bytes"`
	UploaderID    uuid.UUID `gorm:"type:uuid;not null;index" json:"uploader_id"`
	Uploader      *User     `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
	Status        string    `gorm:"default:'pending';index" json:"status"`
	DownloadCount int       `gorm:"not null;default:0" json:"download_count"`
	ThumbnailPath string    `json:"thumbnail_path,omitempty"`
}
