package models

import "time"

// File is the metadata row for an uploaded object. The id is the upload
// session id, fixed at completion time and never reused.
type File struct {
	ID          string    `json:"id" gorm:"type:varchar(50);primaryKey"`
	FileName    string    `json:"fileName" gorm:"type:varchar(255);not null"`
	FilePath    string    `json:"-" gorm:"type:varchar(500);not null"` // object store key of the original
	PreviewPath *string   `json:"-" gorm:"type:varchar(500)"`          // object store key of the WEBP preview, images only
	FileURL     string    `json:"fileUrl" gorm:"type:varchar(500);not null"`
	FileSize    int64     `json:"fileSize" gorm:"not null"`
	MimeType    string    `json:"mimeType" gorm:"type:varchar(100);not null"`
	FileType    string    `json:"fileType" gorm:"type:varchar(50);default:article;index"`
	UploadedBy  *string   `json:"uploadedBy,omitempty" gorm:"type:varchar(50)"`
	UploadedAt  time.Time `json:"uploadedAt" gorm:"autoCreateTime;index"`
}

func (File) TableName() string {
	return "files"
}
