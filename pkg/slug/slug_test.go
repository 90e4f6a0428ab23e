package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Red Shirt", "red-shirt"},
		{"  Hello   World!  ", "hello-world"},
		{"Crème Brûlée Mug", "creme-brulee-mug"},
		{"T-Shirt & Cap!", "t-shirt-and-cap"},
		{"Kadın Giyim", "kadin-giyim"},
		{"Straße 42", "strasse-42"},
		{"---", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Generate(tt.in)
			assert.Equal(t, tt.want, got)
			if got != "" {
				assert.True(t, Valid(got))
			}
		})
	}
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "red-shirt", WithSuffix("red-shirt", 1))
	assert.Equal(t, "red-shirt-3", WithSuffix("red-shirt", 3))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("a-b-c"))
	assert.False(t, Valid("A-b"))
	assert.False(t, Valid("a--b"))
	assert.False(t, Valid("-a"))
	assert.False(t, Valid(""))
}
