package search

import "strings"

const maxQueryLength = 100

// LikeEscape is the escape character patterns are built with.
const LikeEscape = "!"

var likeEscaper = strings.NewReplacer(LikeEscape, LikeEscape+LikeEscape, "%", LikeEscape+"%", "_", LikeEscape+"_")

// SanitizeQuery trims the input and caps its length.
func SanitizeQuery(input string) string {
	input = strings.TrimSpace(input)
	if len(input) > maxQueryLength {
		input = input[:maxQueryLength]
	}
	return input
}

// BuildContainsPattern creates a LIKE pattern that matches input anywhere in a
// column. LIKE wildcards in the input are escaped so they match literally. The
// pattern must be used with ESCAPE '!'.
func BuildContainsPattern(input string) string {
	input = SanitizeQuery(input)
	if input == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(input) + "%"
}
