package core

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"
)

// NewObjectKey builds a collision-resistant storage key for an uploaded file,
// e.g. "event-images/event_1724900000000_a1b2c3d4e5f6.png". The original
// filename only contributes its extension.
func NewObjectKey(prefix, originalName string) string {
	name := fmt.Sprintf("event_%d_%s", time.Now().UnixMilli(), randomHex(6))
	if ext := strings.ToLower(strings.TrimPrefix(path.Ext(originalName), ".")); ext != "" {
		name += "." + ext
	}
	return path.Join(prefix, name)
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		for i := range b {
			b[i] = byte(i + 1)
		}
	}
	return hex.EncodeToString(b)
}
