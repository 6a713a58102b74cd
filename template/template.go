// Package template implements the Template Engine (Component E): literal
// "{% ns.ident %}" token substitution against a resolved variable map, with
// Strict/Verbose/Silent missing-variable policies.
package template

import (
	"fmt"
	"regexp"

	"github.com/wstrucke/scs/errs"
	"github.com/wstrucke/scs/resolve"
)

// Policy controls how a missing variable is handled during Substitute.
type Policy int

const (
	// Strict aborts on the first missing variable.
	Strict Policy = iota
	// Verbose replaces missing tokens with the empty string, reports every
	// one, and continues.
	Verbose
	// Silent behaves like Verbose but suppresses the reported errors.
	Silent
)

// token matches "{% ns.ident %}" with ns one of resource/constant/system and
// ident any run of non-space, non-comma characters. The engine is
// line-agnostic: input is treated as one byte stream, not per-line text.
var token = regexp.MustCompile(`\{%\s*(resource|constant|system)\.([^ ,}]+)\s*%\}`)

// Substitute scans data for tokens and replaces each with its resolved
// value. It returns the substituted bytes and, for Verbose, one error per
// missing variable (Silent suppresses these but still substitutes the
// empty string; Strict returns on the first miss without finishing the
// scan).
func Substitute(data []byte, vars resolve.VarMap, policy Policy) ([]byte, []error) {
	var missErrs []error
	var strictErr error

	out := token.ReplaceAllFunc(data, func(match []byte) []byte {
		if strictErr != nil {
			return match
		}
		sub := token.FindSubmatch(match)
		key := string(sub[1]) + "." + string(sub[2])
		val, ok := vars[key]
		if ok {
			return []byte(val)
		}
		switch policy {
		case Strict:
			strictErr = errs.Templatef("missing variable %q", key)
			return match
		case Verbose:
			missErrs = append(missErrs, fmt.Errorf("missing variable %q", key))
			return nil
		default: // Silent
			return nil
		}
	})

	if strictErr != nil {
		return nil, []error{strictErr}
	}
	return out, missErrs
}
