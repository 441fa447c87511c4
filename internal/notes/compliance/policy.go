package compliance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPolicy declares what the auto-corrector may assume when a
// required check flag was never answered. Assuming a clinical check was
// performed is a policy decision, not an engineering one, so the defaults
// live in one reviewable place, can be overridden per deployment, and
// every application of a default is itemized in the correction report and
// audit log.
type DefaultPolicy struct {
	// AssumeRedFlagsAssessed fills a missing red_flags_assessed flag.
	AssumeRedFlagsAssessed bool `yaml:"assume_red_flags_assessed"`
	// AssumeContraindicationsChecked fills a missing
	// contraindications_checked flag.
	AssumeContraindicationsChecked bool `yaml:"assume_contraindications_checked"`
}

// StandardPolicy mirrors the behavior clinicians already rely on: an
// AI-generated note that omits the flags is treated as assessed-with-no-
// findings, pending clinician review before signature.
func StandardPolicy() DefaultPolicy {
	return DefaultPolicy{
		AssumeRedFlagsAssessed:         true,
		AssumeContraindicationsChecked: true,
	}
}

// LoadPolicy reads a per-deployment override file. A missing path keeps
// the standard policy; a malformed file is a configuration error and
// fails loudly.
func LoadPolicy(path string) (DefaultPolicy, error) {
	if path == "" {
		return StandardPolicy(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return StandardPolicy(), nil
		}
		return DefaultPolicy{}, fmt.Errorf("read compliance policy %s: %w", path, err)
	}
	policy := StandardPolicy()
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return DefaultPolicy{}, fmt.Errorf("parse compliance policy %s: %w", path, err)
	}
	return policy, nil
}
