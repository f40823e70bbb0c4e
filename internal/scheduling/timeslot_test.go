package scheduling

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tod(s string) TimeOfDay { return MustParseTimeOfDay(s) }

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"9:30", 0, false},
		{"09:60", 0, false},
		{"09-30", 0, false},
		{"ab:cd", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := ParseTimeOfDay(c.in)
		if !c.ok {
			assert.ErrorIs(t, err, ErrInvalidTimeOfDay, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got.Minutes(), c.in)
		assert.Equal(t, c.in, got.String())
	}
}

func TestTimeOfDayJSON(t *testing.T) {
	b, err := json.Marshal([]TimeOfDay{tod("10:00"), tod("10:30")})
	require.NoError(t, err)
	assert.JSONEq(t, `["10:00","10:30"]`, string(b))

	var back []TimeOfDay
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, []TimeOfDay{tod("10:00"), tod("10:30")}, back)

	assert.Error(t, json.Unmarshal([]byte(`["25:00"]`), &back))
}

func TestGenerateTimeSlotsDefaultWindow(t *testing.T) {
	slots := DefaultGrid().DefaultSlots()

	require.Len(t, slots, 28)
	assert.Equal(t, "09:30", slots[0].String())
	assert.Equal(t, "23:00", slots[len(slots)-1].String())
	for i := 1; i < len(slots); i++ {
		assert.Equal(t, 30, slots[i].Minutes()-slots[i-1].Minutes())
	}
}

func TestGenerateTimeSlotsAnchoredAtStart(t *testing.T) {
	g := DefaultGrid()

	assert.Equal(t, []string{"09:30", "10:00", "10:30"}, FormatSlots(g.GenerateTimeSlots(tod("09:30"), tod("10:30"))))
	// 10:15 is not reachable from 09:30 in 30 minute steps.
	assert.Equal(t, []string{"09:30", "10:00"}, FormatSlots(g.GenerateTimeSlots(tod("09:30"), tod("10:15"))))
	assert.Equal(t, []string{"12:00"}, FormatSlots(g.GenerateTimeSlots(tod("12:00"), tod("12:00"))))
	assert.Empty(t, g.GenerateTimeSlots(tod("12:00"), tod("11:00")))
}

func TestCalculateEndTime(t *testing.T) {
	assert.Equal(t, "11:00", CalculateEndTime(tod("10:00"), 60).String())
	assert.Equal(t, "11:30", CalculateEndTime(tod("10:00"), 90).String())
	assert.Equal(t, "11:00", CalculateEndTime(tod("10:30"), 30).String())
	assert.Equal(t, "23:30", CalculateEndTime(tod("22:00"), 90).String())
	assert.Equal(t, "23:30", CalculateEndTime(tod("22:30"), 60).String())
	// Wraps into the next day.
	assert.Equal(t, "00:30", CalculateEndTime(tod("23:30"), 60).String())
}

func TestGenerateTimeSlotsBetween(t *testing.T) {
	g := DefaultGrid()

	assert.Equal(t, []string{"10:00", "10:30", "11:00"}, FormatSlots(g.GenerateTimeSlotsBetween(tod("10:00"), tod("11:30"))))
	assert.Equal(t, []string{"10:00"}, FormatSlots(g.GenerateTimeSlotsBetween(tod("10:00"), tod("10:30"))))
	assert.Empty(t, g.GenerateTimeSlotsBetween(tod("10:00"), tod("10:00")))
}

func TestGenerateTimeSlotsBetweenBackToBack(t *testing.T) {
	g := DefaultGrid()
	first := g.GenerateTimeSlotsBetween(tod("10:00"), tod("11:00"))
	second := g.GenerateTimeSlotsBetween(tod("11:00"), tod("12:00"))

	for _, s := range first {
		assert.NotContains(t, second, s)
	}
}

func TestHasTimeOverlap(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 string
		want           bool
	}{
		{"partial", "10:00", "11:00", "10:30", "11:30", true},
		{"containment", "10:00", "12:00", "10:30", "11:00", true},
		{"gap", "10:00", "11:00", "11:10", "12:00", false},
		{"small overlap", "10:00", "11:00", "10:55", "12:00", true},
		{"identical", "10:00", "11:00", "10:00", "11:00", true},
		{"back to back", "10:00", "11:00", "11:00", "12:00", false},
		{"back to back reversed", "11:00", "12:00", "10:00", "11:00", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, HasTimeOverlap(tod(c.s1), tod(c.e1), tod(c.s2), tod(c.e2)))
		})
	}
}

func TestGridWithoutStepUsesDefault(t *testing.T) {
	g := Grid{DefaultOpen: tod("10:00"), DefaultClose: tod("11:00")}
	assert.Equal(t, []string{"10:00", "10:30", "11:00"}, FormatSlots(g.DefaultSlots()))
}
