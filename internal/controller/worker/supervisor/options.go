package supervisor

import "time"

type Option func(*Supervisor)

func ReconnectDelay(delay time.Duration) Option {
	return func(s *Supervisor) {
		s.reconnectDelay = delay
	}
}

// AfterFunc replaces time.AfterFunc for scheduling reconnects.
func AfterFunc(fn func(time.Duration, func()) Timer) Option {
	return func(s *Supervisor) {
		s.afterFunc = fn
	}
}
