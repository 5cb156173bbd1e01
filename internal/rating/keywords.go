package rating

import "strconv"

// SearchKeywords is the text handed to search indexing. It is the plain number
// rather than the glyph rendering so that "3" matches a three-star record.
func SearchKeywords(value Value) string {
	stars, ok := value.Int()
	if !ok {
		return ""
	}
	return strconv.Itoa(stars)
}
