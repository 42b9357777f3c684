package api

import (
	"fmt"
	"strings"
	"time"
)

// DaysHoursMins renders end-start as "X days Y hours Z minutes", dropping
// leading zero units. Spans under a minute read "Just now" for a past
// event (isLast) and "Now!" otherwise.
func DaysHoursMins(end, start time.Time, isLast bool) string {
	d := end.Sub(start)
	if d < time.Minute {
		if isLast {
			return "Just now"
		}
		return "Now!"
	}

	units := []struct {
		n    int
		name string
	}{
		{int(d / (24 * time.Hour)), "day"},
		{int(d % (24 * time.Hour) / time.Hour), "hour"},
		{int(d % time.Hour / time.Minute), "minute"},
	}

	var parts []string
	for _, u := range units {
		if u.n == 0 && len(parts) == 0 {
			continue
		}
		name := u.name
		if u.n != 1 {
			name += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", u.n, name))
	}
	return strings.Join(parts, " ")
}
