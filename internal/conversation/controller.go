// Package conversation turns chat text into actions on the user's disposable
// addresses and renders the answers as transport-neutral replies.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tempmail-otp-bot/internal/logging"
	"tempmail-otp-bot/internal/models"
	"tempmail-otp-bot/internal/provider"
	"tempmail-otp-bot/internal/scanner"
	"tempmail-otp-bot/internal/session"
	"tempmail-otp-bot/internal/store"
)

// Controller drives one conversation turn at a time
type Controller struct {
	store    store.Store
	sessions *session.Manager
	provider provider.Provider
}

// NewController creates a Controller over the given store, sessions and mail backend
func NewController(st store.Store, sessions *session.Manager, p provider.Provider) *Controller {
	return &Controller{
		store:    st,
		sessions: sessions,
		provider: p,
	}
}

// Start begins a conversation over: the session is rebuilt from the store and the menu is shown.
// When the store cannot be read the owned addresses are kept and only search mode is left.
func (c *Controller) Start(ctx context.Context, userID string) []Reply {
	sess := c.sessions.Get(userID)
	if stored, ok := c.storedEmails(ctx, userID); ok {
		sess.Reset(stored)
	} else {
		sess.ExitSearchMode()
	}

	logging.FromContext(ctx).WithField("user_id", userID).Infof("Conversation started with %d emails", len(sess.Emails()))
	return []Reply{menu(textWelcome)}
}

// HandleText handles one inbound text message of userID
func (c *Controller) HandleText(ctx context.Context, userID, input string) []Reply {
	input = strings.TrimSpace(input)
	sess := c.sessions.Get(userID)

	if stored, ok := c.storedEmails(ctx, userID); ok {
		sess.Sync(stored)
	}

	if sess.AwaitingSearch() {
		if !looksLikeEmail(input) {
			return []Reply{text(textInvalidSearch)}
		}
		sess.ExitSearchMode()
		return c.fetchMessages(ctx, input, textNoMessagesFor)
	}

	switch input {
	case LabelCreateEmail:
		return c.createEmail(ctx, userID, sess)

	case LabelFetchOTP:
		current, ok := sess.Current()
		if !ok {
			return []Reply{text(textNoActiveEmail)}
		}
		return c.fetchOTP(ctx, current)

	case LabelAllMessages:
		current, ok := sess.Current()
		if !ok {
			return []Reply{text(textNoActiveEmail)}
		}
		return c.fetchMessages(ctx, current, textNoMessages)

	case LabelListEmails:
		return listEmails(sess)

	case LabelSearchMessages:
		sess.EnterSearchMode()
		return []Reply{text(textSearchPrompt)}

	default:
		return []Reply{menu(textChooseFromMenu)}
	}
}

// storedEmails reads the user's list from the full store mapping. The second
// result is false when the store could not be read at all.
func (c *Controller) storedEmails(ctx context.Context, userID string) ([]string, bool) {
	data, err := c.store.Load(ctx)
	if err != nil {
		logging.FromContext(ctx).WithError(err).WithField("user_id", userID).Error("Error loading store")
		return nil, false
	}
	return data[userID], true
}

func (c *Controller) createEmail(ctx context.Context, userID string, sess *session.Session) []Reply {
	locallog := logging.FromContext(ctx).WithField("user_id", userID).WithField("provider", c.provider.Name())

	address, err := c.provider.CreateAddress(ctx)
	if err != nil {
		locallog.WithError(err).Error("Error creating email")
		if errors.Is(err, provider.ErrNoAddress) {
			return []Reply{text(textNoAddress)}
		}
		return []Reply{failure(textCreateError, err)}
	}

	emails, err := store.AppendEmail(ctx, c.store, userID, address)
	if err != nil {
		locallog.WithError(err).WithField("address", address).Error("Error saving created email")
		return []Reply{failure(textCreateError, err)}
	}

	sess.Sync(emails)
	sess.AppendEmail(address)

	locallog.WithField("address", address).Infof("Email created, user now owns %d", len(emails))
	return []Reply{markdown(textCreated, address)}
}

func (c *Controller) fetchOTP(ctx context.Context, address string) []Reply {
	result, err := c.provider.LatestCodeOrLink(ctx, address)
	if err != nil {
		logging.FromContext(ctx).WithError(err).WithField("address", address).Error("Error fetching OTP")
		return []Reply{failure(textOTPError, err)}
	}

	if result.Value == "" {
		return []Reply{text(textNothingNew)}
	}

	switch result.Kind {
	case models.CodeOTP:
		return []Reply{markdown(textOTP, result.Value)}
	case models.CodeLink:
		return []Reply{markdown(textVerifyLink, result.Value)}
	default:
		return []Reply{markdown(textUnknownResult, result.Value)}
	}
}

func (c *Controller) fetchMessages(ctx context.Context, address, emptyText string) []Reply {
	locallog := logging.FromContext(ctx).WithField("address", address)

	messages, err := c.provider.ListMessages(ctx, address)
	if err != nil {
		locallog.WithError(err).Error("Error fetching messages")
		return []Reply{failure(textMessagesError, err)}
	}

	if len(messages) == 0 {
		return []Reply{text(emptyText)}
	}

	replies := []Reply{markdown(textMessagesHeader, len(messages), address)}

	res := scanner.Scan(messages)
	for _, preview := range res.Previews {
		replies = append(replies, markdown(textMessageLabel), text(preview))
	}

	if res.Gift != nil {
		locallog.Infof("Gift link found in message %d", res.Gift.Index+1)
		gift := markdown(textGiftFound)
		gift.Button = &Button{Label: textGiftButton, URL: res.Gift.Link}
		return append(replies, gift)
	}

	return append(replies, text(fmt.Sprintf(textGiftNotFound, scanner.ScanWindow)))
}

func listEmails(sess *session.Session) []Reply {
	emails := sess.Emails()
	if len(emails) == 0 {
		return []Reply{text(textNoEmailsYet)}
	}

	current, _ := sess.Current()

	var b strings.Builder
	b.WriteString(textEmailsHeader)
	for i, e := range emails {
		status := ""
		if e == current {
			status = textActiveSuffix
		}
		fmt.Fprintf(&b, textEmailsLine, i+1, e, status)
	}

	return []Reply{{Text: b.String(), Markdown: true}}
}

// looksLikeEmail is the minimal shape check applied to searched addresses
func looksLikeEmail(s string) bool {
	return strings.Contains(s, "@") && strings.Contains(s, ".")
}
