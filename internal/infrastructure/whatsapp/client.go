package whatsapp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mdp/qrterminal/v3"
	"github.com/rs/zerolog"
	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"github.com/sebelasdpib2/photo-bot/pkg/logger"
	"github.com/sebelasdpib2/photo-bot/pkg/types/errs"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

type (
	// MessageHandler receives every normalized inbound message.
	MessageHandler interface {
		HandleMessage(msg entity.Message)
	}

	// ConnectionHandler receives transport lifecycle events.
	ConnectionHandler interface {
		HandleConnected()
		HandleDisconnected(reason entity.DisconnectReason)
		HandleCredentialsUpdated()
	}
)

// Client wraps a whatsmeow client. Reconnects are driven by the caller, the
// built-in auto reconnect is disabled.
type Client struct {
	wa     *whatsmeow.Client
	device *store.Device
	qrOut  io.Writer
	logger logger.Interface

	messages    MessageHandler
	connections ConnectionHandler
}

func NewClient(device *store.Device, zl zerolog.Logger, l logger.Interface) *Client {
	wa := whatsmeow.NewClient(device, waLog.Zerolog(zl.With().Str("module", "whatsmeow").Logger()))
	wa.EnableAutoReconnect = false

	c := &Client{
		wa:     wa,
		device: device,
		qrOut:  os.Stdout,
		logger: l,
	}
	wa.AddEventHandler(c.dispatch)

	return c
}

// Subscribe must be called before Connect.
func (c *Client) Subscribe(messages MessageHandler, connections ConnectionHandler) {
	c.messages = messages
	c.connections = connections
}

// Connect opens the websocket. An unpaired device prints a pairing QR code first.
func (c *Client) Connect(ctx context.Context) error {
	if c.wa.Store.ID == nil {
		qrChan, err := c.wa.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("Client - Connect - c.wa.GetQRChannel: %w", err)
		}
		go c.printQR(qrChan)
	}

	err := c.wa.Connect()
	if err != nil {
		return fmt.Errorf("Client - Connect - c.wa.Connect: %w", err)
	}

	return nil
}

func (c *Client) Disconnect() {
	c.wa.Disconnect()
}

// SaveCredentials persists the device keys to the session store.
func (c *Client) SaveCredentials(ctx context.Context) error {
	if c.device.ID == nil {
		return nil
	}

	err := c.device.Save(ctx)
	if err != nil {
		return fmt.Errorf("Client - SaveCredentials - c.device.Save: %w", err)
	}

	return nil
}

func (c *Client) DownloadMedia(ctx context.Context, ref entity.MediaReference) ([]byte, error) {
	media, ok := ref.Handle.(whatsmeow.DownloadableMessage)
	if !ok || media == nil {
		return nil, fmt.Errorf("Client - DownloadMedia: %w", errs.ErrEmptyMedia)
	}

	data, err := c.wa.Download(ctx, media)
	if err != nil {
		return nil, fmt.Errorf("Client - DownloadMedia - c.wa.Download: %w", err)
	}

	return data, nil
}

func (c *Client) SendText(ctx context.Context, conversationID, text string) error {
	jid, err := types.ParseJID(conversationID)
	if err != nil {
		return fmt.Errorf("Client - SendText - types.ParseJID: %w", err)
	}

	_, err = c.wa.SendMessage(ctx, jid, &waE2E.Message{Conversation: proto.String(text)})
	if err != nil {
		return fmt.Errorf("Client - SendText - c.wa.SendMessage: %w", err)
	}

	return nil
}

func (c *Client) printQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for item := range qrChan {
		c.handleQRItem(item)
	}
}

func (c *Client) handleQRItem(item whatsmeow.QRChannelItem) {
	switch item.Event {
	case whatsmeow.QRChannelEventCode:
		fmt.Fprintln(c.qrOut, "Scan QR: WhatsApp -> Settings -> Linked Devices -> Link a Device")
		qrterminal.GenerateHalfBlock(item.Code, qrterminal.L, c.qrOut)
	case whatsmeow.QRChannelEventError:
		c.logger.Error(item.Error, "Client - handleQRItem")
	case whatsmeow.QRChannelTimeout.Event, whatsmeow.QRChannelErrUnexpectedEvent.Event:
		// whatsmeow закрывает сокет сам, события Disconnected не будет
		c.logger.Warn("Client - handleQRItem - pairing ended: %s", item.Event)
		if c.connections != nil {
			c.connections.HandleDisconnected(entity.ReasonConnectFailed)
		}
	default:
		c.logger.Info("Client - handleQRItem - pairing event: %s", item.Event)
	}
}

func (c *Client) dispatch(evt any) {
	if evt, ok := evt.(*events.Message); ok {
		if c.messages != nil {
			c.messages.HandleMessage(NormalizeEnvelope(evt.Info, evt.Message))
		}

		return
	}

	if c.connections == nil {
		return
	}

	ev, ok := connectionEventOf(evt)
	if !ok {
		return
	}

	switch {
	case ev.connected:
		c.connections.HandleConnected()
	case ev.credentials:
		c.connections.HandleCredentialsUpdated()
	default:
		c.logger.Warn("Client - dispatch - disconnected: %s", ev.reason)
		c.connections.HandleDisconnected(ev.reason)
	}
}

type connectionEvent struct {
	connected   bool
	credentials bool
	reason      entity.DisconnectReason
}

func connectionEventOf(evt any) (connectionEvent, bool) {
	switch evt := evt.(type) {
	case *events.Connected:
		return connectionEvent{connected: true}, true
	case *events.PairSuccess:
		return connectionEvent{credentials: true}, true
	case *events.LoggedOut:
		return connectionEvent{reason: entity.ReasonLoggedOut}, true
	case *events.StreamReplaced:
		return connectionEvent{reason: entity.ReasonReplaced}, true
	case *events.Disconnected:
		return connectionEvent{reason: entity.ReasonConnectionLost}, true
	case *events.ConnectFailure:
		if evt.Reason.IsLoggedOut() {
			return connectionEvent{reason: entity.ReasonLoggedOut}, true
		}

		return connectionEvent{reason: entity.ReasonConnectFailed}, true
	default:
		return connectionEvent{}, false
	}
}
