package attachments

import (
	"github.com/google/uuid"

	"github.com/OpenCCS/ccs/internal/approval/model"
)

// Kind classifies what an attachment documents.
type Kind string

const (
	KindSafetyDataSheet Kind = "sds"       // Safety data sheet for a stored chemical
	KindPhoto           Kind = "photo"     // Photo of the container or its placement
	KindPictogram       Kind = "pictogram" // GHS pictogram asset
)

func (k Kind) Valid() bool {
	switch k {
	case KindSafetyDataSheet, KindPhoto, KindPictogram:
		return true
	}
	return false
}

// Attachment is the stored metadata of one uploaded file. The binary content
// lives in the configured blob store under Key; the record is the source of
// truth for the content type.
type Attachment struct {
	model.BaseModel
	ContainerID *uuid.UUID `gorm:"type:uuid;column:container_id;index" json:"containerId,omitempty"`
	Kind        Kind       `gorm:"type:varchar(20);column:kind;not null" json:"kind"`
	FileName    string     `gorm:"type:varchar(255);column:file_name;not null" json:"fileName"`
	Key         string     `gorm:"type:varchar(255);column:key;not null;uniqueIndex" json:"key"`
	URL         string     `gorm:"type:text;column:url" json:"url"`
	Size        int64      `gorm:"column:size;not null" json:"size"`
	ContentType string     `gorm:"type:varchar(100);column:content_type;not null" json:"contentType"`
	UploadedBy  uuid.UUID  `gorm:"type:uuid;column:uploaded_by;not null" json:"uploadedBy"`
}

func (a *Attachment) TableName() string {
	return "attachments"
}
