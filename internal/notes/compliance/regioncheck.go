package compliance

import (
	"regexp"
	"sort"
	"strings"
)

// RegionCheckResult reports anatomical regions the Objective narrative
// mentions without a recorded physical test. Violations are surfaced for
// clinician review, never removed from the text, and never block.
type RegionCheckResult struct {
	IsValid    bool     `json:"is_valid"`
	Mentioned  []string `json:"mentioned"`
	Tested     []string `json:"tested"`
	Violations []string `json:"violations"`
}

// regionLexicon maps narrative terms (English and Spanish) onto canonical
// region names.
var regionLexicon = map[string]string{
	"cervical": "cervical", "neck": "cervical", "cuello": "cervical",
	"thoracic": "dorsal", "dorsal": "dorsal",
	"lumbar": "lumbar", "low back": "lumbar", "zona lumbar": "lumbar",
	"shoulder": "shoulder", "hombro": "shoulder",
	"elbow": "elbow", "codo": "elbow",
	"wrist": "wrist", "muñeca": "wrist", "muneca": "wrist",
	"hand": "hand", "mano": "hand",
	"hip": "hip", "cadera": "hip",
	"knee": "knee", "rodilla": "knee",
	"ankle": "ankle", "tobillo": "ankle",
	"foot": "foot", "pie": "foot",
}

var regionTermRE = buildRegionTermRE()

func buildRegionTermRE() *regexp.Regexp {
	terms := make([]string, 0, len(regionLexicon))
	for term := range regionLexicon {
		terms = append(terms, regexp.QuoteMeta(term))
	}
	// Longest first so "low back" wins over "back"-style substrings.
	sort.Slice(terms, func(i, j int) bool { return len(terms[i]) > len(terms[j]) })
	return regexp.MustCompile(`(?i)\b(` + strings.Join(terms, "|") + `)\b`)
}

// CrossCheckRegions compares the regions mentioned in the Objective text
// against the regions actually subjected to a physical test.
func CrossCheckRegions(objectiveText string, testedRegions []string) RegionCheckResult {
	res := RegionCheckResult{
		IsValid:    true,
		Mentioned:  []string{},
		Tested:     []string{},
		Violations: []string{},
	}

	tested := map[string]bool{}
	for _, raw := range testedRegions {
		region := canonicalRegion(raw)
		if region == "" || tested[region] {
			continue
		}
		tested[region] = true
		res.Tested = append(res.Tested, region)
	}

	mentioned := map[string]bool{}
	for _, match := range regionTermRE.FindAllString(objectiveText, -1) {
		region := regionLexicon[strings.ToLower(strings.TrimSpace(match))]
		if region == "" || mentioned[region] {
			continue
		}
		mentioned[region] = true
		res.Mentioned = append(res.Mentioned, region)
		if !tested[region] {
			res.Violations = append(res.Violations, region)
		}
	}

	sort.Strings(res.Mentioned)
	sort.Strings(res.Tested)
	sort.Strings(res.Violations)
	res.IsValid = len(res.Violations) == 0
	return res
}

// canonicalRegion resolves either a canonical region name or a lexicon
// term to the canonical name; unknown regions pass through lowercased so
// the check can still match exact mentions.
func canonicalRegion(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if canonical, ok := regionLexicon[s]; ok {
		return canonical
	}
	for _, canonical := range regionLexicon {
		if canonical == s {
			return s
		}
	}
	return s
}
