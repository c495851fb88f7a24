// Package moderation provides chat filters for the game engine.
package moderation

import (
	"regexp"
	"strings"
)

const (
	ActionNone     = "none"
	ActionFiltered = "filtered"
	ActionBlocked  = "blocked"
)

type Verdict struct {
	Allowed  bool   `json:"isAllowed"`
	Filtered string `json:"filteredText"`
	Action   string `json:"action"`
}

// AllowAll lets every message through unchanged.
type AllowAll struct{}

func (AllowAll) ModerateMessage(userID, username, text string) Verdict {
	return Verdict{Allowed: true, Filtered: text, Action: ActionNone}
}

// Blocklist masks listed words and blocks messages longer than MaxLength.
type Blocklist struct {
	MaxLength int
	pattern   *regexp.Regexp
}

func NewBlocklist(words []string, maxLength int) *Blocklist {
	b := &Blocklist{MaxLength: maxLength}
	var quoted []string
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	if len(quoted) > 0 {
		b.pattern = regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	return b
}

func (b *Blocklist) ModerateMessage(userID, username, text string) Verdict {
	text = strings.TrimSpace(text)
	if text == "" || (b.MaxLength > 0 && len([]rune(text)) > b.MaxLength) {
		return Verdict{Allowed: false, Action: ActionBlocked}
	}
	if b.pattern == nil || !b.pattern.MatchString(text) {
		return Verdict{Allowed: true, Filtered: text, Action: ActionNone}
	}
	masked := b.pattern.ReplaceAllStringFunc(text, func(m string) string {
		return strings.Repeat("*", len([]rune(m)))
	})
	return Verdict{Allowed: true, Filtered: masked, Action: ActionFiltered}
}
