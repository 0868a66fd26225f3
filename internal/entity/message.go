package entity

import "time"

type MessageKind string

const (
	KindText        MessageKind = "text"
	KindImage       MessageKind = "image"
	KindVideo       MessageKind = "video"
	KindAlbum       MessageKind = "album"
	KindUnsupported MessageKind = "unsupported"
)

// Message is a transport message after envelope normalization.
type Message struct {
	ID             string
	ConversationID string
	ParticipantID  string
	SenderName     string
	Timestamp      time.Time
	Kind           MessageKind
	Text           string
	AlbumGroupID   string
	Media          *MediaReference
	Quoted         *QuotedMessage
	FromMe         bool
	Broadcast      bool
}

// QuotedMessage is the envelope of the message a reply refers to.
type QuotedMessage struct {
	ID            string
	ParticipantID string
	Kind          MessageKind
	AlbumGroupID  string
	Media         *MediaReference
}

// ImageRecord builds the cache record for an inbound image message.
func (m Message) ImageRecord() (InboundImageRecord, bool) {
	if m.Kind != KindImage || m.Media == nil {
		return InboundImageRecord{}, false
	}

	return InboundImageRecord{
		MessageID:        m.ID,
		ConversationID:   m.ConversationID,
		ParticipantID:    m.ParticipantID,
		SenderName:       m.SenderName,
		TimestampSeconds: m.Timestamp.Unix(),
		AlbumGroupID:     m.AlbumGroupID,
		Media:            *m.Media,
	}, true
}
