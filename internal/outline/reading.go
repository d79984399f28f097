package outline

import (
	"math"
	"strings"
)

// WordsPerMinute is the reading speed behind ReadingMinutes.
const WordsPerMinute = 200

// WordCount counts whitespace-separated words, fenced code included.
func WordCount(markdown string) int {
	return len(strings.Fields(markdown))
}

// ReadingMinutes estimates reading time, rounded up. A body with any words
// takes at least a minute; an empty one takes none.
func ReadingMinutes(markdown string) int {
	words := WordCount(markdown)
	if words == 0 {
		return 0
	}
	return int(math.Ceil(float64(words) / WordsPerMinute))
}
