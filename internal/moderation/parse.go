package moderation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	numberRegex    = regexp.MustCompile(`[0-9]+`)
	ErrParseFailed = errors.New("parse_failed")
)

// ParseScore extracts the bot score from model output. The prompt asks for a
// bare integer, but the parser tolerates surrounding prose and takes the
// first number found. Scores outside 0-100 are rejected.
func ParseScore(text string) (int, error) {
	m := numberRegex.FindString(text)
	if m == "" {
		return 0, fmt.Errorf("%w: no score found", ErrParseFailed)
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("%w: score %d out of range", ErrParseFailed, v)
	}
	return v, nil
}
