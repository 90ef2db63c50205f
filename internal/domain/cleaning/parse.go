package cleaning

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parsePair splits "a-b" into two numbers.
func parsePair(text string) (float64, float64, bool) {
	left, right, ok := strings.Cut(strings.TrimSpace(text), "-")
	if !ok {
		return 0, 0, false
	}
	a, err := strconv.ParseFloat(strings.TrimSpace(left), 64)
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.ParseFloat(strings.TrimSpace(right), 64)
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}

// ParseRatio turns "made-attempted" into made/attempted. Zero attempts or
// unparseable text yield nil.
func ParseRatio(text string) *float64 {
	made, attempted, ok := parsePair(text)
	if !ok || attempted == 0 {
		return nil
	}
	v := made / attempted
	return &v
}

// ParseClock converts "MM:SS" to seconds.
func ParseClock(text string) *float64 {
	mm, ss, ok := strings.Cut(strings.TrimSpace(text), ":")
	if !ok {
		return nil
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 {
		return nil
	}
	s, err := strconv.Atoi(ss)
	if err != nil || s < 0 || s >= 60 {
		return nil
	}
	v := float64(m*60 + s)
	return &v
}

// FormatClock renders seconds as "MM:SS", rounding to the nearest second.
func FormatClock(seconds float64) string {
	total := int(math.Round(seconds))
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
