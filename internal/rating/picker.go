package rating

// Star is one clickable position of the edit surface's star picker.
type Star struct {
	Position int
	Filled   bool
	Selected bool
}

// Picker is everything the edit surface needs to draw one field.
type Picker struct {
	Stars []Star
	// ZeroOption offers an explicit "no stars" choice; without it the lowest
	// selectable rating is one star.
	ZeroOption   bool
	ZeroSelected bool
	Unrated      bool
}

func NewPicker(value Value, cfg Config) Picker {
	current, present := value.Int()

	picker := Picker{
		Stars:        PickerStars(value, cfg),
		ZeroOption:   cfg.AllowZeroStars,
		ZeroSelected: present && current == 0,
		Unrated:      !present,
	}
	return picker
}

func PickerStars(value Value, cfg Config) []Star {
	if cfg.MaxStars <= 0 {
		return nil
	}

	current, present := value.Int()
	if !present {
		current = 0
	}

	stars := make([]Star, 0, cfg.MaxStars)
	for position := 1; position <= cfg.MaxStars; position++ {
		stars = append(stars, Star{
			Position: position,
			Filled:   position <= current,
			Selected: position == current,
		})
	}
	return stars
}
