package response

type Health struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	PID           int     `json:"pid"`
	Timestamp     string  `json:"timestamp"`
}

type Ready struct {
	Status          string `json:"status"`
	ConnectionState string `json:"connection_state"`
	Timestamp       string `json:"timestamp"`
}
