package audit

import "strings"

// MaxNoteLength caps stored notes; anything longer is truncated to exactly
// this many characters.
const MaxNoteLength = 500

// SanitizeNotes strips control bytes (0x00-0x1F) from free-text notes and
// truncates the result to MaxNoteLength characters.
func SanitizeNotes(notes string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, notes)

	runes := []rune(cleaned)
	if len(runes) > MaxNoteLength {
		return string(runes[:MaxNoteLength])
	}
	return cleaned
}
