package whatsapp

import (
	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
)

// _maxUnwrapDepth limits nested wrapper unwrapping.
const _maxUnwrapDepth = 5

// NormalizeEnvelope turns a raw whatsmeow message into an entity.Message.
// All wrapper unwrapping and album heuristics of the transport live here.
func NormalizeEnvelope(info types.MessageInfo, raw *waE2E.Message) entity.Message {
	msg := unwrap(raw)

	out := entity.Message{
		ID:             info.ID,
		ConversationID: info.Chat.String(),
		ParticipantID:  info.Sender.ToNonAD().String(),
		SenderName:     info.PushName,
		Timestamp:      info.Timestamp,
		Kind:           classify(msg),
		FromMe:         info.IsFromMe,
		Broadcast:      info.Chat == types.StatusBroadcastJID || info.Chat.Server == types.BroadcastServer,
	}

	switch out.Kind {
	case entity.KindText:
		out.Text = textOf(msg)
	case entity.KindImage:
		out.Media = mediaOf(msg.GetImageMessage())
		out.AlbumGroupID = albumParentID(msg)
	case entity.KindAlbum:
		// маркер альбома сам является родителем своих фото
		out.AlbumGroupID = info.ID
	}

	if ci := contextInfoOf(msg); ci != nil && ci.GetStanzaID() != "" {
		out.Quoted = quotedOf(ci, info)
	}

	return out
}

func unwrap(msg *waE2E.Message) *waE2E.Message {
	for range _maxUnwrapDepth {
		var inner *waE2E.Message

		switch {
		case msg.GetEphemeralMessage() != nil:
			inner = msg.GetEphemeralMessage().GetMessage()
		case msg.GetViewOnceMessage() != nil:
			inner = msg.GetViewOnceMessage().GetMessage()
		case msg.GetViewOnceMessageV2() != nil:
			inner = msg.GetViewOnceMessageV2().GetMessage()
		case msg.GetViewOnceMessageV2Extension() != nil:
			inner = msg.GetViewOnceMessageV2Extension().GetMessage()
		case msg.GetDocumentWithCaptionMessage() != nil:
			inner = msg.GetDocumentWithCaptionMessage().GetMessage()
		}

		if inner == nil {
			return msg
		}
		// обёртка без MessageContextInfo теряет привязку к альбому
		if inner.GetMessageContextInfo() == nil && msg.GetMessageContextInfo() != nil {
			inner.MessageContextInfo = msg.GetMessageContextInfo()
		}
		msg = inner
	}

	return msg
}

func classify(msg *waE2E.Message) entity.MessageKind {
	switch {
	case msg == nil:
		return entity.KindUnsupported
	case msg.GetImageMessage() != nil:
		return entity.KindImage
	case msg.GetVideoMessage() != nil, msg.GetPtvMessage() != nil:
		return entity.KindVideo
	case msg.GetAlbumMessage() != nil:
		return entity.KindAlbum
	case msg.Conversation != nil, msg.GetExtendedTextMessage() != nil:
		return entity.KindText
	default:
		return entity.KindUnsupported
	}
}

func textOf(msg *waE2E.Message) string {
	if msg.Conversation != nil {
		return msg.GetConversation()
	}

	return msg.GetExtendedTextMessage().GetText()
}

func mediaOf(img *waE2E.ImageMessage) *entity.MediaReference {
	if img == nil {
		return nil
	}

	return &entity.MediaReference{
		MimeType:   img.GetMimetype(),
		FileLength: img.GetFileLength(),
		Handle:     img,
	}
}

// albumParentID returns the id of the album marker an image belongs to, or "".
func albumParentID(msg *waE2E.Message) string {
	assoc := msg.GetMessageContextInfo().GetMessageAssociation()
	if assoc.GetAssociationType() != waE2E.MessageAssociation_MEDIA_ALBUM {
		return ""
	}

	return assoc.GetParentMessageKey().GetID()
}

func contextInfoOf(msg *waE2E.Message) *waE2E.ContextInfo {
	switch {
	case msg.GetExtendedTextMessage() != nil:
		return msg.GetExtendedTextMessage().GetContextInfo()
	case msg.GetImageMessage() != nil:
		return msg.GetImageMessage().GetContextInfo()
	case msg.GetVideoMessage() != nil:
		return msg.GetVideoMessage().GetContextInfo()
	default:
		return nil
	}
}

func quotedOf(ci *waE2E.ContextInfo, info types.MessageInfo) *entity.QuotedMessage {
	quotedMsg := unwrap(ci.GetQuotedMessage())

	q := &entity.QuotedMessage{
		ID:            ci.GetStanzaID(),
		ParticipantID: ci.GetParticipant(),
		Kind:          classify(quotedMsg),
	}

	// в личном чате participant не заполняется, автор цитаты это собеседник
	if q.ParticipantID == "" && !info.IsGroup {
		q.ParticipantID = info.Chat.ToNonAD().String()
	}
	if jid, err := types.ParseJID(q.ParticipantID); err == nil && q.ParticipantID != "" {
		q.ParticipantID = jid.ToNonAD().String()
	}

	switch q.Kind {
	case entity.KindImage:
		q.Media = mediaOf(quotedMsg.GetImageMessage())
		q.AlbumGroupID = albumParentID(quotedMsg)
	case entity.KindAlbum:
		q.AlbumGroupID = q.ID
	}

	return q
}
