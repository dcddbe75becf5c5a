package db

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds a LIKE/ILIKE pattern matching s anywhere in the
// column. Wildcards typed by the user match literally under the default
// backslash escape.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
