package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParse classifies representative requirement strings as stored by
// administrators, including the Russian phrasing the data actually
// carries.
func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Condition
	}{
		{
			name: "event participation with count",
			text: "Участие в 5 мероприятиях",
			want: Condition{Kind: EventCount, Threshold: 5},
		},
		{
			name: "event participation without count defaults to 1",
			text: "Участие в мероприятии",
			want: Condition{Kind: EventCount, Threshold: 1},
		},
		{
			name: "event attendance in english",
			text: "Attend 10 events",
			want: Condition{Kind: EventCount, Threshold: 10},
		},
		{
			name: "visit wording counts as participation",
			text: "Посетите 3 события",
			want: Condition{Kind: EventCount, Threshold: 3},
		},
		{
			name: "points threshold with count",
			text: "Набери 100 баллов",
			want: Condition{Kind: PointsThreshold, Threshold: 100},
		},
		{
			name: "points threshold without count defaults to 50",
			text: "Заработай много баллов",
			want: Condition{Kind: PointsThreshold, Threshold: 50},
		},
		{
			name: "score wording in english",
			text: "Reach a score of 200",
			want: Condition{Kind: PointsThreshold, Threshold: 200},
		},
		{
			name: "achievement count with number",
			text: "Получи 3 достижения",
			want: Condition{Kind: AchievementCount, Threshold: 3},
		},
		{
			name: "achievement count without number defaults to 3",
			text: "Собери несколько достижений",
			want: Condition{Kind: AchievementCount, Threshold: 3},
		},
		{
			name: "purchase count with number",
			text: "Соверши 2 покупки",
			want: Condition{Kind: PurchaseCount, Threshold: 2},
		},
		{
			name: "first purchase classified as purchase count",
			text: "Первая покупка",
			want: Condition{Kind: PurchaseCount, Threshold: 1},
		},
		{
			name: "order wording counts as purchase",
			text: "Оформи заказ в магазине",
			want: Condition{Kind: PurchaseCount, Threshold: 1},
		},
		{
			name: "first event without participation word",
			text: "Первое мероприятие",
			want: Condition{Kind: FirstParticipation},
		},
		{
			name: "first in english",
			text: "Your first event",
			want: Condition{Kind: FirstParticipation},
		},
		{
			name: "unmatched text is unparseable",
			text: "Будь самым крутым",
			want: Condition{Kind: Unparseable},
		},
		{
			name: "empty text is unparseable",
			text: "",
			want: Condition{Kind: Unparseable},
		},
		{
			name: "uppercase text matches case-insensitively",
			text: "УЧАСТИЕ В 7 МЕРОПРИЯТИЯХ",
			want: Condition{Kind: EventCount, Threshold: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text))
		})
	}
}

// TestParsePrecedence checks that a string matching several keyword
// sets resolves to the first kind in precedence order.
func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Kind
	}{
		{
			name: "participation plus event beats points",
			text: "Участие в 5 мероприятиях и 100 баллов",
			want: EventCount,
		},
		{
			name: "points beat achievements",
			text: "Набери баллы за достижения",
			want: PointsThreshold,
		},
		{
			name: "achievements beat purchases",
			text: "Достижение за покупки",
			want: AchievementCount,
		},
		{
			name: "event word alone falls through to first shortcut",
			text: "Первое событие",
			want: FirstParticipation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text).Kind)
		})
	}
}

// TestParseWithDefaults checks that configured defaults apply only when
// the text has no number.
func TestParseWithDefaults(t *testing.T) {
	d := Defaults{EventCount: 2, PointsThreshold: 75, AchievementCount: 5, PurchaseCount: 4}

	assert.Equal(t, int64(2), ParseWithDefaults("Участие в мероприятиях", d).Threshold)
	assert.Equal(t, int64(75), ParseWithDefaults("Заработай баллы", d).Threshold)
	assert.Equal(t, int64(5), ParseWithDefaults("Собери достижения", d).Threshold)
	assert.Equal(t, int64(4), ParseWithDefaults("Сделай покупку", d).Threshold)

	// Explicit numbers still win.
	assert.Equal(t, int64(9), ParseWithDefaults("Участие в 9 мероприятиях", d).Threshold)
}

// TestMet checks each condition kind against boundary progress values.
func TestMet(t *testing.T) {
	tests := []struct {
		name     string
		cond     Condition
		progress Progress
		want     bool
	}{
		{"event count below", Condition{EventCount, 5}, Progress{AttendedEvents: 4}, false},
		{"event count exact", Condition{EventCount, 5}, Progress{AttendedEvents: 5}, true},
		{"event count above", Condition{EventCount, 5}, Progress{AttendedEvents: 6}, true},
		{"points below", Condition{PointsThreshold, 100}, Progress{TotalEarnedPoints: 99}, false},
		{"points exact", Condition{PointsThreshold, 100}, Progress{TotalEarnedPoints: 100}, true},
		{"achievements below", Condition{AchievementCount, 3}, Progress{AchievementsHeld: 2}, false},
		{"achievements exact", Condition{AchievementCount, 3}, Progress{AchievementsHeld: 3}, true},
		{"purchases below", Condition{PurchaseCount, 2}, Progress{Purchases: 1}, false},
		{"purchases exact", Condition{PurchaseCount, 2}, Progress{Purchases: 2}, true},
		{"first participation with none", Condition{Kind: FirstParticipation}, Progress{}, false},
		{"first participation with one", Condition{Kind: FirstParticipation}, Progress{AttendedEvents: 1}, true},
		{"first participation ignores threshold", Condition{FirstParticipation, 99}, Progress{AttendedEvents: 1}, true},
		{"unparseable never satisfied", Condition{Kind: Unparseable}, Progress{AttendedEvents: 100, TotalEarnedPoints: 100000, AchievementsHeld: 100, Purchases: 100}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cond.Met(tt.progress))
		})
	}
}

func TestFirstInt(t *testing.T) {
	tests := []struct {
		text  string
		want  int64
		found bool
	}{
		{"участие в 5 мероприятиях", 5, true},
		{"набери 100 баллов и 200 очков", 100, true},
		{"без чисел", 0, false},
		{"42", 42, true},
		{"топ-10 участников", 10, true},
		{"", 0, false},
	}

	for _, tt := range tests {
		n, ok := firstInt(tt.text)
		assert.Equal(t, tt.found, ok, "text %q", tt.text)
		if tt.found {
			assert.Equal(t, tt.want, n, "text %q", tt.text)
		}
	}
}
