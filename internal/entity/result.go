package entity

import "time"

type Outcome string

const (
	Success Outcome = "success"
	Failure Outcome = "failure"
)

// UploadResult is the outcome of one target's pipeline run.
type UploadResult struct {
	Target         UploadTarget
	Outcome        Outcome
	RemoteID       string // image sink id, set iff success
	RemoteImageURL string // set iff success
	RecordID       int64  // metadata row id, set iff success
	ErrorReason    string // set iff failure
	SequenceIndex  int    // 1-based
	SequenceTotal  int
}

func (r UploadResult) Succeeded() bool {
	return r.Outcome == Success
}

// RemoteImage is what the image sink returns for a stored image.
type RemoteImage struct {
	RemoteID string
	URL      string
	ByteSize int64
}

// Photo is the metadata row written for every uploaded image.
type Photo struct {
	ID        int64
	ImageURL  string
	Title     string
	Caption   string
	Status    Status
	FileSize  int64
	CreatedAt time.Time
}
