package records

import (
	"strings"

	"github.com/wstrucke/scs/errs"
)

// EnvFlags is the parsed form of a File-Map's env_flags column: empty, "all",
// "none", "all-envA-envB...", or "none+envA+envB...". Hyphens in environment
// names are converted to underscores before matching per §3.
type EnvFlags struct {
	// Mode is true for "all (minus Excluded)", false for "none (plus Included)".
	All bool
	Set map[string]struct{}
}

// normalizeEnvName converts hyphens to underscores so hyphenated environment
// names compare correctly against tokens in the env_flags field.
func normalizeEnvName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// ParseEnvFlags parses the raw env_flags column. Empty string means "all
// environments" (the default inclusion). Enforces I7: '-' is only legal with
// "all" and '+' only legal with "none".
func ParseEnvFlags(raw string) (EnvFlags, error) {
	if raw == "" || raw == "all" {
		return EnvFlags{All: true, Set: map[string]struct{}{}}, nil
	}
	if raw == "none" {
		return EnvFlags{All: false, Set: map[string]struct{}{}}, nil
	}
	switch {
	case strings.HasPrefix(raw, "all-"):
		rest := strings.TrimPrefix(raw, "all-")
		return EnvFlags{All: true, Set: splitTokens(rest, "-")}, nil
	case strings.HasPrefix(raw, "none+"):
		rest := strings.TrimPrefix(raw, "none+")
		return EnvFlags{All: false, Set: splitTokens(rest, "+")}, nil
	case strings.Contains(raw, "+") && strings.HasPrefix(raw, "all"):
		return EnvFlags{}, errs.Validationf("env_flags %q: '+' is illegal with 'all'", raw)
	case strings.Contains(raw, "-") && strings.HasPrefix(raw, "none"):
		return EnvFlags{}, errs.Validationf("env_flags %q: '-' is illegal with 'none'", raw)
	default:
		return EnvFlags{}, errs.Validationf("env_flags %q: unrecognized format", raw)
	}
}

func splitTokens(s, sep string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, tok := range strings.Split(s, sep) {
		if tok == "" {
			continue
		}
		out[normalizeEnvName(tok)] = struct{}{}
	}
	return out
}

// Includes reports whether env is selected by these flags.
func (ef EnvFlags) Includes(env string) bool {
	env = normalizeEnvName(env)
	_, inSet := ef.Set[env]
	if ef.All {
		return !inSet
	}
	return inSet
}
