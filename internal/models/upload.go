package models

type Upload struct {
	BaseModel
	ApplicantID     *uint       `gorm:"index" json:"applicant_id,omitempty"`
	Usage           UploadUsage `gorm:"type:varchar(20);not null" json:"usage"` // resume, photo, thumbnail
	Path            string      `gorm:"not null" json:"-"`
	URL             string      `gorm:"column:url" json:"url"`
	MimeType        string      `json:"mime_type"`
	Size            int64       `json:"size"`
	OriginalName    string      `gorm:"column:original_name" json:"original_name"`
	StorageProvider string      `gorm:"column:storage_provider;default:'local'" json:"storage_provider"` // local, s3, cloudflare_r2
}
