package storage

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)
	safeExtension   = regexp.MustCompile(`^\.[a-zA-Z0-9]{1,10}$`)
)

// GenerateKey builds "<unix-ms>-<random>-<safe-name><ext>" from a client
// filename. Everything but ASCII letters and digits in the name becomes '_'.
func GenerateKey(filename string, now time.Time) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" {
		base = ""
	}
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if !safeExtension.MatchString(ext) {
		ext = ""
	}
	safe := unsafeNameChars.ReplaceAllString(name, "_")
	if safe == "" {
		safe = "file"
	}
	return fmt.Sprintf("%d-%d-%s%s", now.UnixMilli(), uuid.New().ID()%1_000_000_000, safe, ext)
}

// KeyTime returns the creation time encoded in a generated key.
func KeyTime(key string) (time.Time, bool) {
	prefix, _, ok := strings.Cut(key, "-")
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

func validKey(key string) bool {
	return key != "" && key != "." && key != ".." &&
		!strings.ContainsAny(key, `/\`) && !strings.HasPrefix(key, ".")
}
