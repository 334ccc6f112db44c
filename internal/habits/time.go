package habits

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bensuskins/habit-hub/internal/apperr"
)

// NormalizeTime zero-pads each component of an "H:M" value, so "9:5" becomes
// "09:05". Normalized input comes back unchanged.
func NormalizeTime(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperr.Validation("time", "time required")
	}

	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return "", apperr.Validation("time", "time must look like HH:MM")
	}

	hour, err := parseComponent(parts[0], 23)
	if err != nil {
		return "", apperr.Validation("time", "invalid hour")
	}
	minute, err := parseComponent(parts[1], 59)
	if err != nil {
		return "", apperr.Validation("time", "invalid minute")
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

func parseComponent(value string, max int) (int, error) {
	if value == "" || len(value) > 2 {
		return 0, fmt.Errorf("bad component %q", value)
	}
	number, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if number < 0 || number > max {
		return 0, fmt.Errorf("component %d out of range", number)
	}
	return number, nil
}
