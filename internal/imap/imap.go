package imap

import (
	"errors"

	"github.com/emersion/go-imap"
)

// ErrNotConnected is returned by every call made before Connect succeeded
var ErrNotConnected = errors.New("not connected")

// Client is the subset of an IMAP session the catch-all mailbox needs. UIDs are used throughout.
type Client interface {
	Connect(server string) error
	Login(user, password string) error
	SelectMailbox(name string) error
	SearchRecipient(address string, unseenOnly bool) ([]uint32, error)
	FetchMessages(uids []uint32) ([]*imap.Message, error)
	MarkSeen(uid uint32) error
	Close() error
}
