package storage

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey(t *testing.T) {
	now := time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)
	ms := "1741168800000"

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "plain", filename: "contratto.pdf", want: `^` + ms + `-\d{1,9}-contratto\.pdf$`},
		{name: "spaces and accents", filename: "carta identità fronte.JPG", want: `^` + ms + `-\d{1,9}-carta_identit__fronte\.JPG$`},
		{name: "path traversal", filename: "../../etc/passwd", want: `^` + ms + `-\d{1,9}-passwd$`},
		{name: "windows path", filename: `C:\Users\mario\busta paga.docx`, want: `^` + ms + `-\d{1,9}-busta_paga\.docx$`},
		{name: "empty", filename: "", want: `^` + ms + `-\d{1,9}-file$`},
		{name: "odd extension", filename: "scan.p d f", want: `^` + ms + `-\d{1,9}-scan$`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := GenerateKey(tt.filename, now)
			assert.Regexp(t, regexp.MustCompile(tt.want), key)
			assert.True(t, validKey(key))
		})
	}
}

func TestGenerateKey_Unique(t *testing.T) {
	now := time.Now()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		key := GenerateKey("a.pdf", now)
		_, dup := seen[key]
		assert.False(t, dup, "duplicate key %s", key)
		seen[key] = struct{}{}
	}
}

func TestKeyTime(t *testing.T) {
	now := time.Date(2025, time.March, 5, 10, 0, 0, 123_000_000, time.UTC)

	got, ok := KeyTime(GenerateKey("x.pdf", now))
	assert.True(t, ok)
	assert.True(t, now.Equal(got))

	_, ok = KeyTime("notes.txt")
	assert.False(t, ok)
	_, ok = KeyTime("abc-1-x.pdf")
	assert.False(t, ok)
}
