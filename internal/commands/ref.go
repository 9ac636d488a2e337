package commands

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrRefRequired indicates no item number was provided.
var ErrRefRequired = errors.New("item number required")

// ParseRef parses the 1-based listing position in args[0].
func ParseRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrRefRequired
	}
	if !isAllDigits(args[0]) {
		return 0, fmt.Errorf("invalid item number: %s", args[0])
	}
	num, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid item number: %s", args[0])
	}
	return num, nil
}

// resolveRef parses args and checks the number against a listing of n
// items. It returns the 0-based index.
func resolveRef(args []string, n int) (int, error) {
	num, err := ParseRef(args)
	if err != nil {
		return 0, err
	}
	if num < 1 || num > n {
		return 0, fmt.Errorf("item number out of range: %d", num)
	}
	return num - 1, nil
}

// isAllDigits returns true if s is non-empty and contains only ASCII digits.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
