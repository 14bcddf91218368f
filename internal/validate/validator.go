package validate

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Chupii37/AutoTweet-Bot/internal/models"
)

// DefaultBlocklist mirrors the stock blocked-word set; config can extend it.
var DefaultBlocklist = []string{
	"hate", "kill", "murder", "terrorist", "bomb",
	"scam", "fraud", "cheat", "steal",
	"sucker", "idiot", "stupid", "moron",
}

// Result reports every failed check, not only the first one.
type Result struct {
	OK      bool
	Reasons []string
}

// Validator runs all content safety checks on a candidate text.
type Validator struct {
	maxLength   int
	maxHashtags int
	blocklist   []string
}

func New(maxLength, maxHashtags int, extraBlocked []string) *Validator {
	if maxLength <= 0 {
		maxLength = models.TweetMaxLength
	}
	if maxHashtags <= 0 {
		maxHashtags = 5
	}
	blocklist := make([]string, 0, len(DefaultBlocklist)+len(extraBlocked))
	for _, w := range append(append([]string{}, DefaultBlocklist...), extraBlocked...) {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			blocklist = append(blocklist, w)
		}
	}
	return &Validator{maxLength: maxLength, maxHashtags: maxHashtags, blocklist: blocklist}
}

// Validate evaluates every check so Reasons is complete even when several
// fail at once.
func (v *Validator) Validate(text string) Result {
	var reasons []string

	if n := len([]rune(text)); n > v.maxLength {
		reasons = append(reasons, fmt.Sprintf("text exceeds %d characters (%d)", v.maxLength, n))
	}

	if strings.TrimSpace(text) == "" {
		reasons = append(reasons, "text is empty")
	}

	lower := strings.ToLower(text)
	for _, w := range v.blocklist {
		if strings.Contains(lower, w) {
			reasons = append(reasons, fmt.Sprintf("contains blocked term %q", w))
		}
	}

	if n := CountHashtags(text); n > v.maxHashtags {
		reasons = append(reasons, fmt.Sprintf("too many hashtags (%d > %d)", n, v.maxHashtags))
	}

	if hasControlCharacters(text) {
		reasons = append(reasons, "contains control characters")
	}

	return Result{OK: len(reasons) == 0, Reasons: reasons}
}

// CountHashtags counts words starting with '#' followed by at least one
// letter, digit or underscore.
func CountHashtags(text string) int {
	count := 0
	for _, w := range strings.Fields(text) {
		if len(w) > 1 && w[0] == '#' && isTagWord(w[1:]) {
			count++
		}
	}
	return count
}

func isTagWord(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}

func hasControlCharacters(text string) bool {
	for _, r := range text {
		if r == '\n' || r == '\t' {
			continue
		}
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
