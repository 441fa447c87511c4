package synthesis

import "regexp"

// repairRules covers the comma omissions models actually produce. Each
// rule inserts a missing comma between a completed value and the quote
// that opens the next key. Rules only run after a direct parse has
// already failed, and the result gets exactly one reparse attempt.
var repairRules = []struct {
	name string
	re   *regexp.Regexp
	sub  string
}{
	// 42\n "next_key"
	{"comma_after_number", regexp.MustCompile(`([0-9])(\s*\n\s*)"`), `$1,$2"`},
	// } or ] followed by "next_key"
	{"comma_after_close", regexp.MustCompile(`([}\]])(\s+)"`), `$1,$2"`},
	// true/false followed by "next_key"
	{"comma_after_bool", regexp.MustCompile(`\b(true|false)(\s+)"`), `$1,$2"`},
	// "value" "next_key" on one line
	{"comma_after_string", regexp.MustCompile(`"([ \t]+)"`), `",$1"`},
}

// Repair applies every rule and reports whether anything changed.
func Repair(s string) (string, bool) {
	out := s
	for _, rule := range repairRules {
		out = rule.re.ReplaceAllString(out, rule.sub)
	}
	return out, out != s
}
