package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const callIDSuffixLen = 9

// NewCallID returns "call_<unix millis>_<9 random chars>"
func NewCallID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:callIDSuffixLen]
	return fmt.Sprintf("call_%d_%s", now.UnixMilli(), suffix)
}
