package entity

// MediaReference is an opaque transport handle that can later be exchanged for
// the media bytes. It never holds the bytes themselves.
type MediaReference struct {
	MimeType   string
	FileLength uint64
	Handle     any
}

// InboundImageRecord is one observed inbound image message.
type InboundImageRecord struct {
	MessageID        string
	ConversationID   string
	ParticipantID    string
	SenderName       string
	TimestampSeconds int64
	AlbumGroupID     string // empty when the transport gave no grouping hint
	Media            MediaReference
}

// Less orders records by (TimestampSeconds, MessageID) ascending.
func (r InboundImageRecord) Less(other InboundImageRecord) bool {
	if r.TimestampSeconds != other.TimestampSeconds {
		return r.TimestampSeconds < other.TimestampSeconds
	}

	return r.MessageID < other.MessageID
}
