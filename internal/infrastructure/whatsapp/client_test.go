package whatsapp

import (
	"bytes"
	"testing"

	"github.com/sebelasdpib2/photo-bot/internal/entity"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
)

type recordingHandler struct {
	messages     []entity.Message
	connected    int
	credentials  int
	disconnected []entity.DisconnectReason
}

func (h *recordingHandler) HandleMessage(msg entity.Message) { h.messages = append(h.messages, msg) }
func (h *recordingHandler) HandleConnected()                { h.connected++ }
func (h *recordingHandler) HandleCredentialsUpdated()       { h.credentials++ }
func (h *recordingHandler) HandleDisconnected(reason entity.DisconnectReason) {
	h.disconnected = append(h.disconnected, reason)
}

type nopLogger struct{}

func (nopLogger) Debug(interface{}, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})       {}
func (nopLogger) Warn(string, ...interface{})       {}
func (nopLogger) Error(interface{}, ...interface{}) {}
func (nopLogger) Fatal(interface{}, ...interface{}) {}

func TestDispatch(t *testing.T) {
	h := &recordingHandler{}
	c := &Client{logger: nopLogger{}}
	c.Subscribe(h, h)

	c.dispatch(&events.Connected{})
	c.dispatch(&events.PairSuccess{})
	c.dispatch(&events.Disconnected{})
	c.dispatch(&events.LoggedOut{})
	c.dispatch(&events.StreamReplaced{})
	c.dispatch(&events.Receipt{})
	c.dispatch(&events.Message{
		Info:    groupInfo("M1"),
		Message: &waE2E.Message{Conversation: proto.String("!help")},
	})

	if h.connected != 1 || h.credentials != 1 {
		t.Fatalf("connected = %d credentials = %d", h.connected, h.credentials)
	}
	want := []entity.DisconnectReason{entity.ReasonConnectionLost, entity.ReasonLoggedOut, entity.ReasonReplaced}
	if len(h.disconnected) != len(want) {
		t.Fatalf("disconnected = %v", h.disconnected)
	}
	for i := range want {
		if h.disconnected[i] != want[i] {
			t.Fatalf("disconnected = %v, want %v", h.disconnected, want)
		}
	}
	if len(h.messages) != 1 || h.messages[0].Text != "!help" {
		t.Fatalf("messages = %+v", h.messages)
	}
}

func TestConnectionEventOf_ConnectFailure(t *testing.T) {
	ev, ok := connectionEventOf(&events.ConnectFailure{Reason: events.ConnectFailureLoggedOut})
	if !ok || ev.reason != entity.ReasonLoggedOut {
		t.Fatalf("event = %+v ok=%v", ev, ok)
	}

	ev, ok = connectionEventOf(&events.ConnectFailure{Reason: events.ConnectFailureServiceUnavailable})
	if !ok || ev.reason != entity.ReasonConnectFailed {
		t.Fatalf("event = %+v ok=%v", ev, ok)
	}
}

func TestHandleQRItem(t *testing.T) {
	h := &recordingHandler{}
	out := &bytes.Buffer{}
	c := &Client{logger: nopLogger{}, qrOut: out}
	c.Subscribe(h, h)

	c.handleQRItem(whatsmeow.QRChannelItem{Event: whatsmeow.QRChannelEventCode, Code: "2@abc,def,ghi"})
	if out.Len() == 0 {
		t.Fatal("qr code not printed")
	}
	c.handleQRItem(whatsmeow.QRChannelSuccess)
	if len(h.disconnected) != 0 {
		t.Fatalf("disconnected = %v after success", h.disconnected)
	}

	c.handleQRItem(whatsmeow.QRChannelTimeout)
	c.handleQRItem(whatsmeow.QRChannelErrUnexpectedEvent)

	want := []entity.DisconnectReason{entity.ReasonConnectFailed, entity.ReasonConnectFailed}
	if len(h.disconnected) != len(want) {
		t.Fatalf("disconnected = %v, want %v", h.disconnected, want)
	}
}
