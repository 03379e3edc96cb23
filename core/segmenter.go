package orchestration

import "strings"

const minSegmentRunes = 4

// segmentBoundaries are the sentence-ending runes a reply is split on.
const segmentBoundaries = ".!?。！？\n"

// splitSegments cuts an assistant reply into short speakable pieces at
// sentence boundaries. Degenerate fragments below the minimum length are
// merged into their neighbour instead of becoming segments of their own, so
// "OK." style stubs never produce a one-beat playback command.
func splitSegments(text string) []string {
	var segments []string
	var current strings.Builder

	flush := func() {
		segment := strings.TrimSpace(current.String())
		current.Reset()
		if segment == "" {
			return
		}
		if len(segments) > 0 && len([]rune(segment)) < minSegmentRunes {
			segments[len(segments)-1] += " " + segment
			return
		}
		segments = append(segments, segment)
	}

	for _, r := range text {
		current.WriteRune(r)
		if strings.ContainsRune(segmentBoundaries, r) {
			flush()
		}
	}
	flush()

	// A short leading fragment could not be merged backwards; merge it into
	// the segment that follows it.
	if len(segments) >= 2 && len([]rune(segments[0])) < minSegmentRunes {
		segments[1] = segments[0] + " " + segments[1]
		segments = segments[1:]
	}

	return segments
}
