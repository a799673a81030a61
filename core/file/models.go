package file

import (
	"math"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/studash/dashboard/core"
)

type (
	StorageType string
	Visibility  string
)

// Storage types
const (
	StorageLocal       StorageType = "local"
	StorageGoogleDrive StorageType = "google-drive"
)

// Visibilities
const (
	VisibilityPrivate Visibility = "private"
	VisibilityShared  Visibility = "shared"
	VisibilityPublic  Visibility = "public"
)

// File is the metadata of a stored document. The content itself lives in the storage backend.
type File struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"user_id"`
	FileName    string      `json:"file_name"`
	Category    string      `json:"category"`
	FileSize    int64       `json:"file_size"`
	SizeText    string      `json:"size_text"`
	MimeType    string      `json:"mime_type"`
	StorageType StorageType `json:"storage_type"`
	Visibility  Visibility  `json:"visibility"`
	CreatedAt   time.Time   `json:"created_at"` // UTC
}

// NewFile contains the metadata needed to record a stored document.
type NewFile struct {
	FileName    string `json:"file_name" validate:"required,notblank,max=255"`
	Category    string `json:"category" validate:"max=50"`
	FileSize    int64  `json:"file_size" validate:"min=0"`
	MimeType    string `json:"mime_type" validate:"max=100"`
	StorageType string `json:"storage_type" validate:"omitempty,oneof=local google-drive"`
	Visibility  string `json:"visibility" validate:"omitempty,oneof=private shared public"`
}

func (nf *NewFile) Validate(validate *validator.Validate) error {
	nf.FileName = core.CleanString(nf.FileName)
	nf.Category = core.CleanString(nf.Category)
	nf.MimeType = core.CleanString(nf.MimeType, true /* lower */)
	nf.StorageType = core.CleanString(nf.StorageType, true /* lower */)
	nf.Visibility = core.CleanString(nf.Visibility, true /* lower */)
	return validate.Struct(nf)
}

// Stats summarizes a user's storage usage.
type Stats struct {
	TotalFiles int    `json:"total_files"`
	TotalSize  int64  `json:"total_size"`
	SizeText   string `json:"size_text"`
	LocalFiles int    `json:"local_files"`
	DriveFiles int    `json:"drive_files"`
}

var byteUnits = []string{"B", "KB", "MB", "GB"}

// FormatBytes renders n in 1024-based units up to GB, rounded to 2 decimals.
// Negative sizes count as 0.
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	pow := 0
	for pow < len(byteUnits)-1 && n >= int64(1)<<(10*(pow+1)) {
		pow++
	}
	val := float64(n) / float64(int64(1)<<(10*pow))
	return strconv.FormatFloat(math.Round(val*100)/100, 'f', -1, 64) + " " + byteUnits[pow]
}
