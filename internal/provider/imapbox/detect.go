package imapbox

import (
	"regexp"

	"tempmail-otp-bot/internal/mailparse"
	"tempmail-otp-bot/internal/models"
)

var (
	keywordCode = regexp.MustCompile(`(?i)(?:code|otp|pin|passcode|verification|كود|رمز)\D{0,20}?(\d{4,8})\b`)
	bareCode    = regexp.MustCompile(`\b(\d{6})\b`)
)

// Detect finds a one-time code in subject and body, falling back to the first link of the body.
// A code next to a keyword wins over a bare six digit number.
func Detect(subject, body string) models.CodeResult {
	for _, text := range []string{subject, body} {
		if m := keywordCode.FindStringSubmatch(text); m != nil {
			return models.CodeResult{Kind: models.CodeOTP, Value: m[1]}
		}
	}
	for _, text := range []string{subject, body} {
		if m := bareCode.FindStringSubmatch(text); m != nil {
			return models.CodeResult{Kind: models.CodeOTP, Value: m[1]}
		}
	}
	if links := mailparse.ExtractLinks(body); len(links) > 0 {
		return models.CodeResult{Kind: models.CodeLink, Value: links[0]}
	}
	return models.CodeResult{}
}
