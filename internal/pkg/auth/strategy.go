package auth

import "time"

// Strategy issues and parses local session tokens bound to a driver id.
type Strategy interface {
	IssueToken(driverID string) (string, error)
	ParseToken(token string) (string, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
