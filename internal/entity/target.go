package entity

type SourceKind string

const (
	QuotedSingle   SourceKind = "quoted-single"
	CacheRecovered SourceKind = "cache-recovered"
)

type Mode string

const (
	Single Mode = "single"
	Batch  Mode = "batch"
)

// UploadTarget is a resolved unit of work for one image. Never persisted.
type UploadTarget struct {
	MessageID        string
	ParticipantID    string
	SenderName       string
	TimestampSeconds int64
	Media            MediaReference
	SourceKind       SourceKind
}

// Resolution is the output of the album resolver for one command.
type Resolution struct {
	Targets  []UploadTarget
	Mode     Mode
	Strategy string
}

func TargetFromRecord(r InboundImageRecord) UploadTarget {
	return UploadTarget{
		MessageID:        r.MessageID,
		ParticipantID:    r.ParticipantID,
		SenderName:       r.SenderName,
		TimestampSeconds: r.TimestampSeconds,
		Media:            r.Media,
		SourceKind:       CacheRecovered,
	}
}
