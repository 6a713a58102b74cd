package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyPatch_SimpleLineReplace(t *testing.T) {
	base := "alpha\nbeta\ngamma\n"
	patch := "--- a/name\n+++ b/name\n@@ -1,3 +1,3 @@\n alpha\n-beta\n+BETA\n gamma\n"
	out, err := ApplyPatch([]byte(base), []byte(patch))
	assert.NoError(t, err)
	assert.Equal(t, "alpha\nBETA\ngamma\n", string(out))
}

func TestApplyPatch_EmptyPatchIsNoop(t *testing.T) {
	base := "unchanged\n"
	out, err := ApplyPatch([]byte(base), []byte(""))
	assert.NoError(t, err)
	assert.Equal(t, base, string(out))
}
