package server

import (
	"errors"
	"strconv"
	"strings"
)

func formatItemID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// parseItemID accepts only positive base-10 ids that fit the serial (int4)
// column; serial ids start at 1.
func parseItemID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("item id must be positive")
	}
	return id, nil
}
