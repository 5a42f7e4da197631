// Package scanner extracts what the bot shows from fetched mail: previews,
// the gift marker and the first link of a body. Bodies are opaque text.
package scanner

import (
	"regexp"
	"strings"
	"unicode"

	"tempmail-otp-bot/internal/models"
)

const (
	// PreviewLimit is the number of characters of a body shown in chat
	PreviewLimit = 1000

	// ScanWindow is how many messages the gift scan looks at
	ScanWindow = 5

	// GiftMarker flags promotional mail that carries a redeemable link
	GiftMarker = "DISCORD NITRO"

	ellipsis = "..."
)

var linkPattern = regexp.MustCompile(`https?://\S+`)

// Preview returns body cut to limit characters, with an ellipsis when something was cut
func Preview(body string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	runes := []rune(body)
	if len(runes) <= limit {
		return body
	}
	return string(runes[:limit]) + ellipsis
}

// HasGiftSignature reports whether the marker appears in the subject or the body
func HasGiftSignature(subject, body string) bool {
	return strings.Contains(body, GiftMarker) || strings.Contains(subject, GiftMarker)
}

// ExtractFirstLink returns the first http(s) URL of body. The token is cut
// at the first '>', then at the first '<', then at any whitespace.
func ExtractFirstLink(body string) (string, bool) {
	link := linkPattern.FindString(body)
	if link == "" {
		return "", false
	}
	link = cutAt(link, ">")
	link = cutAt(link, "<")
	if i := strings.IndexFunc(link, unicode.IsSpace); i >= 0 {
		link = link[:i]
	}
	return link, true
}

func cutAt(s, sep string) string {
	before, _, _ := strings.Cut(s, sep)
	return before
}

// Gift is the first gift message found by Scan
type Gift struct {
	Index int // position in the scanned slice
	Link  string
}

// Result is what the "all messages" view renders
type Result struct {
	Previews []string
	Gift     *Gift
}

// Scan walks at most ScanWindow messages in the given order. Each visited
// message contributes a preview; the first one carrying the gift marker and a
// link ends the walk, so later messages are neither previewed nor scanned.
func Scan(messages []models.Message) Result {
	var res Result
	for i, msg := range messages {
		if i == ScanWindow {
			break
		}
		res.Previews = append(res.Previews, Preview(msg.Body, PreviewLimit))

		if !HasGiftSignature(msg.Subject, msg.Body) {
			continue
		}
		if link, ok := ExtractFirstLink(msg.Body); ok {
			res.Gift = &Gift{Index: i, Link: link}
			break
		}
	}
	return res
}
