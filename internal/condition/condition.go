// Package condition classifies human-authored achievement requirement
// strings into a small set of typed unlock conditions and evaluates
// them against a user's activity counters.
//
// Requirement strings are free text written by administrators, mostly
// in Russian ("Участие в 5 мероприятиях", "Набери 100 баллов"), so
// classification is keyword-based and deliberately forgiving: a string
// matching no keyword set yields an Unparseable condition that is never
// satisfied.
package condition

import (
	"strconv"
	"strings"
	"unicode"
)

// Kind identifies what a condition counts.
type Kind int

// Condition kinds, in classification precedence order. The first kind
// whose keyword test matches the requirement text wins.
const (
	// Unparseable matches no keyword set and is never satisfied. The
	// achievement stays admin-awarded despite carrying requirement text.
	Unparseable Kind = iota
	// EventCount requires a minimum number of attended events.
	EventCount
	// PointsThreshold requires a minimum lifetime earned points total.
	PointsThreshold
	// AchievementCount requires a minimum number of held achievements.
	AchievementCount
	// PurchaseCount requires a minimum number of non-cancelled orders.
	PurchaseCount
	// FirstParticipation is satisfied by a single attended event,
	// regardless of any number in the text.
	FirstParticipation
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case EventCount:
		return "event_count"
	case PointsThreshold:
		return "points_threshold"
	case AchievementCount:
		return "achievement_count"
	case PurchaseCount:
		return "purchase_count"
	case FirstParticipation:
		return "first_participation"
	default:
		return "unparseable"
	}
}

// Condition is a typed achievement unlock condition.
type Condition struct {
	Kind      Kind
	Threshold int64
}

// Defaults holds the thresholds used when the text names a condition
// kind but contains no number.
type Defaults struct {
	EventCount       int64
	PointsThreshold  int64
	AchievementCount int64
	PurchaseCount    int64
}

// DefaultThresholds are the stock defaults used by Parse.
var DefaultThresholds = Defaults{
	EventCount:       1,
	PointsThreshold:  50,
	AchievementCount: 3,
	PurchaseCount:    1,
}

// Progress is a snapshot of the counters conditions are tested against.
type Progress struct {
	AttendedEvents    int64
	TotalEarnedPoints int64
	AchievementsHeld  int64
	Purchases         int64
}

// Keyword sets. Russian stems cover the inflected forms actually found
// in stored requirement strings; English terms cover imported data.
var (
	participationWords = []string{"участ", "посещ", "посети", "particip", "attend"}
	eventWords         = []string{"мероприят", "событ", "event"}
	pointsWords        = []string{"балл", "очк", "point", "score"}
	achievementWords   = []string{"достижен", "achievement", "badge"}
	purchaseWords      = []string{"покуп", "товар", "заказ", "purchase", "product", "order"}
	firstWords         = []string{"перв", "first"}
)

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// firstInt extracts the first unsigned integer literal from the text.
func firstInt(text string) (int64, bool) {
	start := -1
	for i, r := range text {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			n, err := strconv.ParseInt(text[start:i], 10, 64)
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	if start >= 0 {
		n, err := strconv.ParseInt(text[start:], 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Parse classifies requirement text using the stock default thresholds.
func Parse(text string) Condition {
	return ParseWithDefaults(text, DefaultThresholds)
}

// ParseWithDefaults classifies requirement text into a Condition.
// Matching is case-insensitive and checked in precedence order; the
// threshold is the first integer in the text, falling back to the
// per-kind default.
func ParseWithDefaults(text string, d Defaults) Condition {
	lower := strings.ToLower(text)
	n, hasN := firstInt(lower)

	threshold := func(def int64) int64 {
		if hasN {
			return n
		}
		return def
	}

	switch {
	case containsAny(lower, participationWords) && containsAny(lower, eventWords):
		return Condition{Kind: EventCount, Threshold: threshold(d.EventCount)}
	case containsAny(lower, pointsWords):
		return Condition{Kind: PointsThreshold, Threshold: threshold(d.PointsThreshold)}
	case containsAny(lower, achievementWords):
		return Condition{Kind: AchievementCount, Threshold: threshold(d.AchievementCount)}
	case containsAny(lower, purchaseWords):
		return Condition{Kind: PurchaseCount, Threshold: threshold(d.PurchaseCount)}
	case containsAny(lower, firstWords) &&
		(containsAny(lower, participationWords) || containsAny(lower, eventWords)):
		return Condition{Kind: FirstParticipation}
	default:
		return Condition{Kind: Unparseable}
	}
}

// Met reports whether the condition is satisfied by the given progress
// snapshot.
func (c Condition) Met(p Progress) bool {
	switch c.Kind {
	case EventCount:
		return p.AttendedEvents >= c.Threshold
	case PointsThreshold:
		return p.TotalEarnedPoints >= c.Threshold
	case AchievementCount:
		return p.AchievementsHeld >= c.Threshold
	case PurchaseCount:
		return p.Purchases >= c.Threshold
	case FirstParticipation:
		return p.AttendedEvents >= 1
	default:
		return false
	}
}
