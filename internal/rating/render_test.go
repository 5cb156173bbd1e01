package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		cfg   Config
		want  string
	}{
		{"absent five", Absent(), Config{MaxStars: 5, ShowEmptyStars: true}, "-"},
		{"three of five with empties", Of(3), Config{MaxStars: 5, ShowEmptyStars: true}, "⭐⭐⭐☆☆"},
		{"three of five without empties", Of(3), Config{MaxStars: 5}, "⭐⭐⭐"},
		{"full five", Of(5), Config{MaxStars: 5, ShowEmptyStars: true}, "⭐⭐⭐⭐⭐"},
		{"two of three", Of(2), Config{MaxStars: 3, ShowEmptyStars: true}, "⭐⭐☆"},
		{"zero of five", Of(0), Config{MaxStars: 5, ShowEmptyStars: true}, "-"},
		{"single star set", Of(1), Config{MaxStars: 1, ShowEmptyStars: true}, "⭐"},
		{"single star absent with empties", Absent(), Config{MaxStars: 1, ShowEmptyStars: true}, "☆"},
		{"single star absent without empties", Absent(), Config{MaxStars: 1}, "-"},
		{"single star zero with empties", Of(0), Config{MaxStars: 1, ShowEmptyStars: true}, "☆"},
		{"seven of ten", Of(7), Config{MaxStars: 10, ShowEmptyStars: true}, "⭐ (7/10)"},
		{"seven of ten ignores empties flag", Of(7), Config{MaxStars: 10}, "⭐ (7/10)"},
		{"absent ten", Absent(), Config{MaxStars: 10, ShowEmptyStars: true}, "-"},
		{"non canonical max", Of(4), Config{MaxStars: 4, ShowEmptyStars: true}, "⭐⭐⭐⭐☆"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.value, tt.cfg))
		})
	}
}

func TestRenderUnclampedValueDoesNotPanic(t *testing.T) {
	assert.Equal(t, "⭐⭐⭐⭐⭐⭐", Render(Of(6), Config{MaxStars: 5, ShowEmptyStars: true}))
}

func TestSearchKeywordsUsesPlainNumber(t *testing.T) {
	assert.Equal(t, "", SearchKeywords(Absent()))
	assert.Equal(t, "0", SearchKeywords(Of(0)))
	assert.Equal(t, "7", SearchKeywords(Of(7)))
}

func TestPickerStars(t *testing.T) {
	stars := PickerStars(Of(2), Config{MaxStars: 3})
	assert.Len(t, stars, 3)
	assert.True(t, stars[0].Filled)
	assert.False(t, stars[0].Selected)
	assert.True(t, stars[1].Filled)
	assert.True(t, stars[1].Selected)
	assert.False(t, stars[2].Filled)
	assert.Equal(t, 3, stars[2].Position)

	empty := PickerStars(Absent(), Config{MaxStars: 5})
	assert.Len(t, empty, 5)
	for _, star := range empty {
		assert.False(t, star.Filled)
		assert.False(t, star.Selected)
	}
	assert.Nil(t, PickerStars(Of(1), Config{}))
}

func TestNewPicker(t *testing.T) {
	zero := NewPicker(Of(0), Config{MaxStars: 5, AllowZeroStars: true})
	assert.True(t, zero.ZeroOption)
	assert.True(t, zero.ZeroSelected)
	assert.False(t, zero.Unrated)

	unrated := NewPicker(Absent(), Config{MaxStars: 5})
	assert.False(t, unrated.ZeroOption)
	assert.False(t, unrated.ZeroSelected)
	assert.True(t, unrated.Unrated)
}
