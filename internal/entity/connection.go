package entity

type ConnectionState string

const (
	Connecting ConnectionState = "connecting"
	Open       ConnectionState = "open"
	Closed     ConnectionState = "close"
)

type DisconnectReason string

const (
	ReasonLoggedOut      DisconnectReason = "logged_out"
	ReasonConnectionLost DisconnectReason = "connection_lost"
	ReasonConnectFailed  DisconnectReason = "connect_failed"
	ReasonReplaced       DisconnectReason = "stream_replaced"
)
