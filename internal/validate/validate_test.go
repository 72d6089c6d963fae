package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last@example.org", "x+tag@sub.domain.io"}
	for _, e := range valid {
		assert.NoError(t, Email(e), e)
	}
	invalid := []string{"", "plain", "no@dot", "two@@a.com", "spa ce@a.com", "@a.com"}
	for _, e := range invalid {
		assert.ErrorIs(t, Email(e), ErrEmailFormat, e)
	}
}

func TestEmailDoesNotMutate(t *testing.T) {
	// Uppercase is fine; normalization is a separate concern.
	assert.NoError(t, Email("Upper@Example.COM"))
}

func TestPasswordRuleOrder(t *testing.T) {
	cases := []struct {
		pw   string
		want error
	}{
		{"Sh0rt", ErrPasswordLength},
		{"a1", ErrPasswordLength}, // length reported before missing uppercase
		{"alllower1", ErrPasswordUpper},
		{"NoDigitsHere", ErrPasswordDigit},
		{"GoodPass1", nil},
	}
	for _, c := range cases {
		err := Password(c.pw)
		if c.want == nil {
			assert.NoError(t, err, c.pw)
		} else {
			assert.ErrorIs(t, err, c.want, c.pw)
		}
	}
}
