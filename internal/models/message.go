package models

import "time"

// Message represents a mail fetched from the provider. It is never stored locally.
type Message struct {
	Subject string
	Body    string
	From    string
	To      []string // recipient addresses, when the backend exposes headers
	Date    time.Time
}

// CodeKind tells what the provider detected in the latest unread message
type CodeKind int

const (
	CodeUnknown CodeKind = iota
	CodeOTP
	CodeLink
)

func (k CodeKind) String() string {
	switch k {
	case CodeOTP:
		return "otp"
	case CodeLink:
		return "link"
	default:
		return "unknown"
	}
}

// CodeResult is the latest one-time code or verification link of an address
type CodeResult struct {
	Kind  CodeKind
	Value string
}
