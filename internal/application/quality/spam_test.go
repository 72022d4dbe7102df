package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpamScore(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"plain text", "A sturdy oak desk with two drawers", 0},
		{"empty", "", 0},
		{"shouting", "HUGE DISCOUNT ON DESKS", 20},
		{"punctuation runs", "Great desk?! Really!!", 20},
		{"promotional phrase", "Click here for the desk", 15},
		{"repeated characters", "Sooooo good", 10},
		{"whitespace runs ignored", "Hello      world", 0},
		{"extra currency symbols", "price $ € £ ¥ ₹ only", 10},
		{"capped", strings.Repeat("BUY NOW!!! ", 20), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SpamScore(tt.text))
		})
	}
}

func TestRepeatedRuns(t *testing.T) {
	assert.Equal(t, 0, repeatedRuns("aaa", 4))
	assert.Equal(t, 1, repeatedRuns("aaaaaaaa", 4))
	assert.Equal(t, 2, repeatedRuns("aaaa bbbb", 4))
	assert.Equal(t, 1, repeatedRuns("ééééé", 4))
}
