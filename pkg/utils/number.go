package utils

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// BusinessNumber generates a human-readable record number such as
// REQ-3F2A91C4 or PO-0B77D210.
func BusinessNumber(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, strings.ToUpper(uuid.New().String()[:8]))
}
