package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Segment rules are tried in priority order; the first rule whose match is
// also accepted wins and each segment contributes at most one item. A rule
// can match textually but still reject (zero quantity, too-short
// description), in which case the next rule gets a chance. Segments no
// rule accepts are dropped silently.
type itemRule struct {
	name  string
	re    *regexp.Regexp
	build func(m []string) (DraftItem, bool)
}

var itemRules = []itemRule{
	{
		// "frontend 40 hours at ₹2000/hour" — description, quantity,
		// optional unit word, @/at, rate with optional thousands commas.
		name: "quantity-at-rate",
		re:   regexp.MustCompile(`(?i)([a-zA-Z\s]+?)\s+(\d+)\s+(?:hours?|months?|days?|units?|pcs?|pieces?)?\s*(?:@|at)\s*[₹$€£]?\s*([0-9,]+)(?:/(?:hour|month|day|unit|pc|piece))?`),
		build: func(m []string) (DraftItem, bool) {
			description := strings.TrimSpace(m[1])
			quantity, _ := strconv.Atoi(m[2])
			rate := parseAmount(m[3])
			if description == "" || quantity <= 0 || rate <= 0 {
				return DraftItem{}, false
			}
			return draftItem(description, float64(quantity), rate), true
		},
	},
	{
		// "40 x frontend hours @ ₹2000" — quantity precedes description.
		name: "quantity-times-description",
		re:   regexp.MustCompile(`(?i)(\d+)\s*(?:x|×)\s*([a-zA-Z\s]+?)\s*(?:@|at)\s*[₹$€£]?\s*([0-9,]+)`),
		build: func(m []string) (DraftItem, bool) {
			quantity, _ := strconv.Atoi(m[1])
			description := strings.TrimSpace(m[2])
			rate := parseAmount(m[3])
			if description == "" || quantity <= 0 || rate <= 0 {
				return DraftItem{}, false
			}
			return draftItem(description, float64(quantity), rate), true
		},
	},
	{
		// "database setup ₹15000" — whole-segment match, implicit
		// quantity of one. Short descriptions are rejected to avoid
		// matching stray currency mentions.
		name: "description-amount",
		re:   regexp.MustCompile(`(?i)^([a-zA-Z\s]+?)\s*[₹$€£]\s*([0-9,]+)$`),
		build: func(m []string) (DraftItem, bool) {
			description := strings.TrimSpace(m[1])
			amount := parseAmount(m[2])
			if len(description) <= 2 || amount <= 0 {
				return DraftItem{}, false
			}
			return draftItem(description, 1, amount), true
		},
	},
}

func matchSegment(segment string) (DraftItem, bool) {
	for _, rule := range itemRules {
		m := rule.re.FindStringSubmatch(segment)
		if m == nil {
			continue
		}
		if item, ok := rule.build(m); ok {
			return item, true
		}
	}
	return DraftItem{}, false
}

func draftItem(description string, quantity, rate float64) DraftItem {
	return DraftItem{
		Description: description,
		Quantity:    quantity,
		Rate:        rate,
		Amount:      quantity * rate,
	}
}

func parseAmount(raw string) float64 {
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}
