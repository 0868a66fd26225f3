package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"github.com/sebelasdpib2/photo-bot/pkg/kafka/producer"
	"github.com/segmentio/kafka-go"
)

const EventPhotoUploaded = "photo.uploaded"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PhotoUploadedEvent is published after a photo row is committed so the
// gallery site can refresh without polling.
type PhotoUploadedEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	PhotoID    int64     `json:"photo_id"`
	ImageURL   string    `json:"image_url"`
	Title      string    `json:"title"`
	FileSize   int64     `json:"file_size"`
	MessageID  string    `json:"message_id"`
	Source     string    `json:"source"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type EventProducer struct {
	writer messageWriter
}

func NewEventProducer(p *producer.Producer) *EventProducer {
	return &EventProducer{writer: p.Writer}
}

func (ep *EventProducer) SendPhotoUploaded(ctx context.Context, photo *entity.Photo, target entity.UploadTarget) error {
	event := PhotoUploadedEvent{
		EventID:    uuid.NewString(),
		Type:       EventPhotoUploaded,
		PhotoID:    photo.ID,
		ImageURL:   photo.ImageURL,
		Title:      photo.Title,
		FileSize:   photo.FileSize,
		MessageID:  target.MessageID,
		Source:     string(target.SourceKind),
		UploadedAt: photo.CreatedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("EventProducer - SendPhotoUploaded - json.Marshal: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", photo.ID)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(EventPhotoUploaded)},
		},
	}

	err = ep.writer.WriteMessages(ctx, msg)
	if err != nil {
		return fmt.Errorf("EventProducer - SendPhotoUploaded - ep.writer.WriteMessages: %w", err)
	}

	return nil
}

func (ep *EventProducer) Close() error {
	err := ep.writer.Close()
	if err != nil {
		return fmt.Errorf("EventProducer - Close: %w", err)
	}

	return nil
}
