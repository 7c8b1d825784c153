package model

import (
	"time"

	"github.com/google/uuid"
)

// Image is an uploaded drawing. The bytes live in Cloudinary; we keep the
// delivery URL so posts can swap content without re-uploading.
type Image struct {
	ID           uint      `gorm:"primaryKey" json:"imageId"`
	UploaderID   uuid.UUID `gorm:"type:uuid;not null" json:"uploaderId"`
	URL          string    `gorm:"type:text;not null" json:"url"`
	FileName     string    `gorm:"size:255" json:"fileName"`
	UploadedDate time.Time `gorm:"autoCreateTime" json:"uploadedDate"`
}
