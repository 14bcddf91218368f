package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_AcceptsCleanText(t *testing.T) {
	v := New(280, 5, nil)
	res := v.Validate("Compound interest is the quiet engine of wealth. #Money #Investing")
	assert.True(t, res.OK)
	assert.Empty(t, res.Reasons)
}

func TestValidate_Length(t *testing.T) {
	v := New(280, 5, nil)
	res := v.Validate(strings.Repeat("a", 281))
	assert.False(t, res.OK)
	assert.Contains(t, res.Reasons[0], "exceeds 280 characters")
}

func TestValidate_EmptyAfterTrim(t *testing.T) {
	v := New(280, 5, nil)
	res := v.Validate("   \t  ")
	assert.False(t, res.OK)
	assert.Contains(t, res.Reasons, "text is empty")
}

func TestValidate_BlocklistCaseInsensitive(t *testing.T) {
	v := New(280, 5, []string{"rugpull"})
	res := v.Validate("This is definitely not a RugPull, trust me")
	assert.False(t, res.OK)
	assert.Contains(t, res.Reasons, `contains blocked term "rugpull"`)

	res = v.Validate("This project is a total SCAM")
	assert.False(t, res.OK, "default blocklist should apply")
}

func TestValidate_TooManyHashtags(t *testing.T) {
	v := New(280, 2, nil)
	res := v.Validate("words #one #two #three")
	assert.False(t, res.OK)
	assert.Contains(t, res.Reasons, "too many hashtags (3 > 2)")
}

func TestValidate_ControlCharacters(t *testing.T) {
	v := New(280, 5, nil)
	res := v.Validate("hello\x00world")
	assert.False(t, res.OK)
	assert.Contains(t, res.Reasons, "contains control characters")

	// Newlines and tabs are legitimate tweet content.
	res = v.Validate("line one\nline two")
	assert.True(t, res.OK)
}

func TestValidate_CollectsAllReasons(t *testing.T) {
	v := New(10, 1, nil)
	res := v.Validate("a hateful thing #one #two \x01" + strings.Repeat("x", 20))
	assert.False(t, res.OK)
	// Every failing check reports, none short-circuits.
	assert.GreaterOrEqual(t, len(res.Reasons), 4)
}

func TestCountHashtags(t *testing.T) {
	assert.Equal(t, 2, CountHashtags("go #first and #second_tag"))
	assert.Equal(t, 0, CountHashtags("no tags here, # alone does not count"))
}
