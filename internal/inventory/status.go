package inventory

import (
	"fmt"
	"strings"
)

type Status string

const (
	StatusPending   Status = "Pending"
	StatusProcessed Status = "Processed"
	StatusShipped   Status = "Shipped"
)

var validStatus = []Status{StatusPending, StatusProcessed, StatusShipped}

// ParseStatus matches case-insensitively and returns the canonical value.
// No transition order is enforced between valid statuses.
func ParseStatus(s string) (Status, error) {
	t := strings.TrimSpace(s)
	for _, v := range validStatus {
		if strings.EqualFold(t, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q, must be one of: %s", ErrInvalidStatus, s, strings.Join(StatusNames(), ", "))
}

func StatusNames() []string {
	out := make([]string, 0, len(validStatus))
	for _, v := range validStatus {
		out = append(out, string(v))
	}
	return out
}
