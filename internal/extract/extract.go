// Package extract pulls verification codes and sender names out of
// forwarded message text using configured patterns.
package extract

import (
	"fmt"
	"regexp"
	"unicode"
)

// Config holds the extraction patterns and the mail-provider allowlist.
type Config struct {
	CodePattern   string
	SenderPattern string
	MailProviders []string
}

// Extractor applies the configured patterns. It is stateless and safe for
// concurrent use.
type Extractor struct {
	code          *regexp.Regexp
	sender        *regexp.Regexp
	mailProviders map[string]struct{}
}

// New compiles the configured patterns.
func New(cfg Config) (*Extractor, error) {
	code, err := regexp.Compile(cfg.CodePattern)
	if err != nil {
		return nil, fmt.Errorf("compile code pattern: %w", err)
	}
	sender, err := regexp.Compile(cfg.SenderPattern)
	if err != nil {
		return nil, fmt.Errorf("compile sender pattern: %w", err)
	}

	providers := make(map[string]struct{}, len(cfg.MailProviders))
	for _, p := range cfg.MailProviders {
		providers[p] = struct{}{}
	}

	return &Extractor{code: code, sender: sender, mailProviders: providers}, nil
}

// Code returns the first match of the code pattern in message, or "" when
// nothing matches.
func (e *Extractor) Code(message string) string {
	return e.code.FindString(message)
}

// Sender determines the human-readable sender of a message. An allowlisted
// mail provider, or a non-numeric title, already carries the sender as the
// title. A purely numeric title is assumed to be a phone number, in which
// case the sender is parsed out of the message body by the bracket
// convention; "" when nothing matches.
func (e *Extractor) Sender(message, provider, title string) string {
	if _, ok := e.mailProviders[provider]; ok || !isNumeric(title) {
		return title
	}
	if m := e.sender.FindStringSubmatch(message); len(m) > 1 {
		return m[1]
	}
	return ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
