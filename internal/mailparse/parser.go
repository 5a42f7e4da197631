// Package mailparse turns raw IMAP messages into models.Message.
package mailparse

import (
	"io"
	"mime"
	"regexp"
	"strings"

	"tempmail-otp-bot/internal/models"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

var (
	addressPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	linkPattern    = regexp.MustCompile(`https?://[^\s"'<>)\]]+`)
	tagPattern     = regexp.MustCompile(`<[^>]*>`)
)

// Parse reads the full body section of msg. The text/plain part is preferred;
// a message with only HTML gets its tags stripped.
func Parse(msg *imap.Message) (models.Message, error) {
	section := &imap.BodySectionName{}
	r := msg.GetBody(section)
	if r == nil {
		return models.Message{}, io.EOF
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		return models.Message{}, err
	}

	out := models.Message{
		Date: msg.InternalDate,
		From: extractEmailAddress(mr.Header.Get("From")),
	}

	for _, key := range []string{"To", "Delivered-To"} {
		list, err := mr.Header.AddressList(key)
		if err != nil {
			continue
		}
		for _, addr := range list {
			out.To = append(out.To, addr.Address)
		}
	}

	subject, err := DecodeHeader(mr.Header.Get("Subject"))
	if err != nil {
		return models.Message{}, err
	}
	out.Subject = subject

	if out.Date.IsZero() {
		if d, err := mr.Header.Date(); err == nil {
			out.Date = d
		}
	}

	var plain, html string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		} else if err != nil {
			return models.Message{}, err
		}

		h, ok := p.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, err := h.ContentType()
		if err != nil {
			continue
		}
		body, err := io.ReadAll(p.Body)
		if err != nil {
			continue
		}

		switch contentType {
		case "text/plain":
			if plain == "" {
				plain = string(body)
			}
		case "text/html":
			if html == "" {
				html = string(body)
			}
		}
	}

	out.Body = plain
	if out.Body == "" && html != "" {
		out.Body = StripTags(html)
	}

	return out, nil
}

func extractEmailAddress(fromHeader string) string {
	return addressPattern.FindString(fromHeader)
}

// DecodeHeader decodes MIME-encoded headers (e.g., "=?UTF-8?B?...?=") to plain text
func DecodeHeader(encoded string) (string, error) {
	decoder := &mime.WordDecoder{CharsetReader: charset.Reader}
	decoded, err := decoder.DecodeHeader(encoded)
	if err != nil {
		return "", err
	}
	return decoded, nil
}

// ExtractLinks finds all URLs in the given text
func ExtractLinks(text string) []string {
	return linkPattern.FindAllString(text, -1)
}

// StripTags removes HTML tags and collapses the blank lines left behind
func StripTags(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
