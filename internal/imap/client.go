package imap

import (
	"fmt"
	"net/textproto"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

type StandardClient struct {
	client  *client.Client
	timeout time.Duration
}

// NewStandardClient creates a new StandardClient with a default timeout of 30 seconds for IMAP operations
func NewStandardClient() *StandardClient {
	return &StandardClient{
		timeout: 30 * time.Second,
	}
}

// Connect establishes a secure connection to the IMAP server using TLS
func (c *StandardClient) Connect(server string) error {
	cl, err := client.DialTLS(server, nil)
	if err != nil {
		return fmt.Errorf("IMAP connection error: %w", err)
	}
	cl.Timeout = c.timeout
	c.client = cl
	return nil
}

func (c *StandardClient) Login(user, password string) error {
	if c.client == nil {
		return ErrNotConnected
	}
	return c.client.Login(user, password)
}

// SelectMailbox selects the mailbox (e.g. "INBOX") in read-write mode so messages can be flagged
func (c *StandardClient) SelectMailbox(name string) error {
	if c.client == nil {
		return ErrNotConnected
	}
	_, err := c.client.Select(name, false)
	return err
}

// SearchRecipient returns the UIDs of the messages delivered to address, optionally only the unseen ones
func (c *StandardClient) SearchRecipient(address string, unseenOnly bool) ([]uint32, error) {
	if c.client == nil {
		return nil, ErrNotConnected
	}

	criteria := imap.NewSearchCriteria()
	criteria.Header = textproto.MIMEHeader{}
	criteria.Header.Add("To", address)
	if unseenOnly {
		criteria.WithoutFlags = []string{imap.SeenFlag}
	}

	uids, err := c.client.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("error searching messages for %s: %w", address, err)
	}

	return uids, nil
}

// FetchMessages retrieves the full messages for uids. The server decides the order of the result.
func (c *StandardClient) FetchMessages(uids []uint32) ([]*imap.Message, error) {
	if c.client == nil {
		return nil, ErrNotConnected
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchInternalDate, imap.FetchUid}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)

	go func() {
		done <- c.client.UidFetch(seqSet, items, messages)
	}()

	var result []*imap.Message
	for m := range messages {
		result = append(result, m)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("error fetching %d messages: %w", len(uids), err)
	}

	return result, nil
}

// MarkSeen flags the message with the given UID as read on the server
func (c *StandardClient) MarkSeen(uid uint32) error {
	if c.client == nil {
		return ErrNotConnected
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}

	return c.client.UidStore(seqSet, item, flags, nil)
}

// Close logs out from the IMAP server. It is a no-op without an active connection.
func (c *StandardClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Logout()
}
