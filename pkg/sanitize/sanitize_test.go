package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserContentKeepsTextAsWritten(t *testing.T) {
	assert.Equal(t, "hello world", UserContent("  hello world  "))
	assert.Equal(t, `rock & roll, Tom's "best"`, UserContent(`rock & roll, Tom's "best"`))
}

func TestHasMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain text", "hello world", false},
		{"ampersand and quotes", `rock & roll, Tom's "best"`, false},
		{"comparison", "1 < 2 && 3 > 2", false},
		{"heart", "I <3 trains", false},
		{"literal entity", "&lt;b&gt; is a tag", false},
		{"line breaks", "one\r\ntwo\nthree", false},
		{"script", "hi<script>alert(1)</script>", true},
		{"bold", "<b>bold</b>", true},
		{"comment", "a <!-- hidden --> b", true},
		{"image", `<img src=x onerror=alert(1)>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasMarkup(tt.input))
		})
	}
}
