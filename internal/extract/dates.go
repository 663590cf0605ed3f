package extract

import "strings"

// translateMonths rewrites vendor-localized month or weekday names using
// the given lookup table so the result parses with time.Parse. Each
// extractor owns its table: abbreviation conventions differ per vendor
// ("Agu" vs "Agt" for August), so there is deliberately no shared global
// vocabulary.
func translateMonths(s string, table map[string]string) string {
	for local, english := range table {
		s = strings.ReplaceAll(s, local, english)
	}
	return s
}
