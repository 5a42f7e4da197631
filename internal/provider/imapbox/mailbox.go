// Package imapbox serves disposable addresses from one catch-all IMAP mailbox.
// Every address of the configured domain lands in the same mailbox and is told
// apart by its To header.
package imapbox

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	imapclient "tempmail-otp-bot/internal/imap"
	"tempmail-otp-bot/internal/logging"
	"tempmail-otp-bot/internal/mailparse"
	"tempmail-otp-bot/internal/models"
	"tempmail-otp-bot/internal/provider"

	"github.com/emersion/go-imap"
	"github.com/google/uuid"
)

const (
	// CodeValidityWindow bounds the age of the message a code is read from
	CodeValidityWindow = 15 * time.Minute

	// MaxMessages caps a listing, newest first
	MaxMessages = 50

	localPartLength = 12
)

// Mailbox implements provider.Provider over a catch-all IMAP mailbox
type Mailbox struct {
	cfg       models.ImapConfig
	newClient func() imapclient.Client
	now       func() time.Time
}

// New creates a Mailbox that opens one IMAP session per call
func New(cfg models.ImapConfig) *Mailbox {
	return &Mailbox{
		cfg: cfg,
		newClient: func() imapclient.Client {
			return imapclient.NewStandardClient()
		},
		now: time.Now,
	}
}

func (m *Mailbox) Name() string {
	return "imap"
}

// CreateAddress picks a random local part under the configured domain. Nothing
// is registered server side: the catch-all accepts any local part.
func (m *Mailbox) CreateAddress(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", provider.Wrap("create-mail", err)
	}
	domain := strings.TrimPrefix(strings.TrimSpace(m.cfg.Domain), "@")
	if domain == "" {
		return "", provider.Wrap("create-mail", provider.ErrNoAddress)
	}

	local := strings.ReplaceAll(uuid.NewString(), "-", "")[:localPartLength]
	return local + "@" + domain, nil
}

func (m *Mailbox) ListMessages(ctx context.Context, address string) ([]models.Message, error) {
	const op = "messages"

	c, err := m.open(ctx)
	if err != nil {
		return nil, provider.Wrap(op, err)
	}
	defer m.close(c)

	uids, err := c.SearchRecipient(address, false)
	if err != nil {
		return nil, provider.Wrap(op, err)
	}
	uids = newestFirst(uids, MaxMessages)
	if len(uids) == 0 {
		return []models.Message{}, nil
	}

	raw, err := c.FetchMessages(uids)
	if err != nil {
		return nil, provider.Wrap(op, err)
	}

	sortNewestFirst(raw)

	locallog := logging.FromContext(ctx).WithField("address", address)
	messages := make([]models.Message, 0, len(raw))
	for _, r := range raw {
		msg, err := mailparse.Parse(r)
		if err != nil {
			locallog.WithError(err).Warnf("Error parsing message UID %d, skipping", r.Uid)
			continue
		}
		if !addressedTo(msg, address) {
			continue
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// LatestCodeOrLink reads the newest unseen message of address and marks it seen
// once a code or link was found in it. The server search only narrows the
// candidates; the recipient is checked again on the parsed headers.
func (m *Mailbox) LatestCodeOrLink(ctx context.Context, address string) (models.CodeResult, error) {
	const op = "last-unread-otp-or-link"

	c, err := m.open(ctx)
	if err != nil {
		return models.CodeResult{}, provider.Wrap(op, err)
	}
	defer m.close(c)

	uids, err := c.SearchRecipient(address, true)
	if err != nil {
		return models.CodeResult{}, provider.Wrap(op, err)
	}
	uids = newestFirst(uids, MaxMessages)
	if len(uids) == 0 {
		return models.CodeResult{}, nil
	}

	raw, err := c.FetchMessages(uids)
	if err != nil {
		return models.CodeResult{}, provider.Wrap(op, err)
	}
	sortNewestFirst(raw)

	locallog := logging.FromContext(ctx).WithField("address", address)

	var (
		msg   models.Message
		uid   uint32
		found bool
	)
	for _, r := range raw {
		parsed, err := mailparse.Parse(r)
		if err != nil {
			locallog.WithError(err).Warnf("Error parsing message UID %d, skipping", r.Uid)
			continue
		}
		if addressedTo(parsed, address) {
			msg, uid, found = parsed, r.Uid, true
			break
		}
	}
	if !found {
		return models.CodeResult{}, nil
	}

	if !m.isRecent(msg.Date) {
		locallog.Infof("Message UID %d is older than %v (date: %v), skipping", uid, CodeValidityWindow, msg.Date)
		return models.CodeResult{}, nil
	}

	result := Detect(msg.Subject, msg.Body)
	if result.Value == "" {
		return result, nil
	}

	if err := c.MarkSeen(uid); err != nil {
		locallog.WithError(err).Errorf("Error marking message UID %d as seen", uid)
	}

	return result, nil
}

func (m *Mailbox) open(ctx context.Context) (imapclient.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := m.newClient()
	if err := c.Connect(m.cfg.Server); err != nil {
		return nil, err
	}
	if err := c.Login(m.cfg.Login, m.cfg.Password); err != nil {
		m.close(c)
		return nil, fmt.Errorf("IMAP login error: %w", err)
	}
	if err := c.SelectMailbox(m.cfg.MailBox); err != nil {
		m.close(c)
		return nil, fmt.Errorf("error selecting mailbox %s: %w", m.cfg.MailBox, err)
	}
	return c, nil
}

func (m *Mailbox) close(c imapclient.Client) {
	if err := c.Close(); err != nil {
		logging.Log.WithError(err).Warn("Error closing IMAP session")
	}
}

// isRecent reports whether date falls within CodeValidityWindow. A zero date is always recent.
func (m *Mailbox) isRecent(date time.Time) bool {
	if date.IsZero() {
		return true
	}
	cutoff := m.now().Add(-CodeValidityWindow)
	return !date.Before(cutoff)
}

// addressedTo reports whether address is one of the parsed recipients, ignoring case
func addressedTo(msg models.Message, address string) bool {
	address = strings.TrimSpace(address)
	for _, to := range msg.To {
		if strings.EqualFold(to, address) {
			return true
		}
	}
	return false
}

func sortNewestFirst(raw []*imap.Message) {
	slices.SortFunc(raw, func(a, b *imap.Message) int {
		return cmp.Compare(b.Uid, a.Uid)
	})
}

// newestFirst sorts a copy of uids in descending order and keeps at most limit of them
func newestFirst(uids []uint32, limit int) []uint32 {
	out := slices.Clone(uids)
	slices.SortFunc(out, func(a, b uint32) int {
		return cmp.Compare(b, a)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
