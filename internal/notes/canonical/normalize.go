package canonical

import (
	"fmt"
	"sort"
	"strings"
)

// Diagnostics describes how a normalization pass resolved its input. It is
// what the audit collaborator receives so vendor schema drift stays
// observable instead of being silently swallowed.
type Diagnostics struct {
	KeymapVersion int
	// Degraded is set when the input was not an object at all and the
	// record fell back to its defaults.
	Degraded bool
	// Matched maps canonical field name to the candidate path that won.
	Matched map[string]string
	// UnmatchedKeys lists incoming top-level keys no candidate consumed.
	UnmatchedKeys []string
}

// Normalize maps an arbitrary parsed payload onto the canonical record.
// It is a total function: any input (nil, scalar, array, object, nested
// junk) yields a fully populated record and a diagnostics value. It never
// panics and never omits a canonical key.
func Normalize(parsed any) (Record, Diagnostics) {
	rec := NewRecord()
	diag := Diagnostics{KeymapVersion: KeymapVersion, Matched: map[string]string{}}

	m, ok := parsed.(map[string]any)
	if !ok || len(m) == 0 {
		diag.Degraded = true
		rec.LegalRiskLevel = riskTier(rec.LegalRiskLevel)
		return rec, diag
	}

	for _, f := range keymap {
		for _, path := range f.candidates {
			val, found := lookupPath(m, path)
			if !found || val == nil {
				continue
			}
			switch f.kind {
			case kindText:
				s := textFromAny(val)
				if s == "" {
					continue
				}
				f.setText(&rec, s)
			case kindList:
				items := listFromAny(val)
				if len(items) == 0 {
					continue
				}
				f.setList(&rec, items)
			}
			diag.Matched[f.name] = path
			break
		}
	}

	rec.LegalRiskLevel = riskTier(rec.LegalRiskLevel)

	for k := range m {
		if !knownTopKeys[k] {
			diag.UnmatchedKeys = append(diag.UnmatchedKeys, k)
		}
	}
	sort.Strings(diag.UnmatchedKeys)
	return rec, diag
}

// lookupPath resolves a dot path of at most one nesting level.
func lookupPath(m map[string]any, path string) (any, bool) {
	head, rest, nested := strings.Cut(path, ".")
	v, ok := m[head]
	if !ok {
		return nil, false
	}
	if !nested {
		return v, true
	}
	inner, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	iv, ok := inner[rest]
	return iv, ok
}

func pathHead(path string) string {
	head, _, _ := strings.Cut(path, ".")
	return head
}

// textFromAny coerces any JSON-decoded value into a trimmed string. Lists
// collapse into a "; "-joined line; objects flatten like list entries.
func textFromAny(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := textFromAny(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	case map[string]any:
		return flattenEntry(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strings.TrimSuffix(strings.TrimSuffix(fmt.Sprintf("%.2f", t), "0"), ".0")
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// listFromAny coerces any JSON-decoded value into a list of human-readable
// strings. A scalar where a list was expected becomes a one-element list;
// object entries flatten to a single line each.
func listFromAny(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := textFromAny(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		return []string{s}
	case map[string]any:
		if s := flattenEntry(t); s != "" {
			return []string{s}
		}
		return nil
	default:
		if s := textFromAny(t); s != "" {
			return []string{s}
		}
		return nil
	}
}

// entryKeyOrder fixes the concatenation order for object-shaped list
// entries (a medication with name/dose/reason, a test with name/region,
// a plan item with action/status/notes).
var entryKeyOrder = []string{
	"name", "nombre", "medication", "medicamento", "test", "prueba",
	"action", "accion", "condition", "diagnosis", "diagnostico", "title",
	"region", "zona", "dose", "dosis", "frequency", "frecuencia",
	"reason", "razon", "motivo", "description", "descripcion", "details",
	"notes", "notas", "status", "estado", "urgency", "urgencia",
}

// flattenEntry renders one object entry as a single readable string,
// taking sub-fields in fixed order and skipping any whose text is already
// contained in what has been emitted.
func flattenEntry(m map[string]any) string {
	parts := make([]string, 0, 4)
	emitted := ""
	for _, key := range entryKeyOrder {
		raw, ok := m[key]
		if !ok || raw == nil {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			s = textFromAny(raw)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if emitted != "" && strings.Contains(strings.ToLower(emitted), strings.ToLower(s)) {
			continue
		}
		parts = append(parts, s)
		emitted += " " + s
	}
	if len(parts) == 0 {
		// Unknown sub-field names: fall back to values in sorted key order
		// so flattening stays deterministic.
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if s := strings.TrimSpace(textFromAny(m[k])); s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " - ")
}

// riskTier collapses vendor risk wording onto the three-tier scale,
// defaulting to the lowest tier.
func riskTier(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case RiskHigh, "high", "severe", "severo", "critical", "critico", "crítico":
		return RiskHigh
	case RiskMedium, "medium", "moderate", "moderado", "mid":
		return RiskMedium
	default:
		return RiskLow
	}
}
