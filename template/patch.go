package template

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/wstrucke/scs/errs"
)

// ApplyPatch applies a unified context-diff patch (as stored at
// template/<env>/<name>) to base, failing if any hunk does not apply
// cleanly. Grounded on the pack's nearest real diff/patch dependency,
// github.com/sergi/go-diff/diffmatchpatch: its patch hunk grammar
// (`@@ -l,s +l,s @@` header, ` `/`-`/`+` prefixed body lines) is a subset of
// unified diff, so the `---`/`+++` file-header lines are stripped before
// handing the remainder to PatchFromText/PatchApply.
func ApplyPatch(base []byte, patchText []byte) ([]byte, error) {
	body := stripFileHeaders(string(patchText))
	if strings.TrimSpace(body) == "" {
		return base, nil
	}

	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(body)
	if err != nil {
		return nil, errs.Templatef("parse patch: %w", err)
	}

	result, applied := dmp.PatchApply(patches, string(base))
	for i, ok := range applied {
		if !ok {
			return nil, errs.Templatef("patch hunk %d did not apply cleanly", i+1)
		}
	}
	return []byte(result), nil
}

// stripFileHeaders removes the "--- a/..." / "+++ b/..." lines a unified
// diff carries before its first "@@" hunk, which diffmatchpatch's parser
// does not expect.
func stripFileHeaders(patch string) string {
	lines := strings.Split(patch, "\n")
	out := lines[:0]
	for _, l := range lines {
		if strings.HasPrefix(l, "--- ") || strings.HasPrefix(l, "+++ ") {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
