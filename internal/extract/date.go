package extract

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// normalizeDate reformats a matched date token to YYYY-MM-DD.
//
// Slash tokens: the 2-digit group among the first two is taken as the
// month, the other as the day; 2-digit years get a "20" prefix. This is a
// heuristic, not locale detection — "05/01/2024" stays ambiguous and is
// read as month/day. Dash tokens starting with a 4-digit group are already
// Y-M-D; otherwise they are treated as D-M-Y and reordered. Tokens that
// fit neither shape fall back to the current date.
func normalizeDate(token string, now time.Time) string {
	switch {
	case strings.Contains(token, "/"):
		parts := strings.Split(token, "/")
		if len(parts) != 3 {
			break
		}
		month, day := parts[1], parts[0]
		if len(parts[0]) == 2 {
			month, day = parts[0], parts[1]
		}
		year := parts[2]
		if len(year) == 2 {
			year = "20" + year
		}
		return year + "-" + pad2(month) + "-" + pad2(day)
	case strings.Contains(token, "-"):
		parts := strings.Split(token, "-")
		if len(parts) != 3 {
			break
		}
		if len(parts[0]) == 4 {
			return token
		}
		return parts[2] + "-" + pad2(parts[1]) + "-" + pad2(parts[0])
	}
	return now.Format(dateLayout)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
