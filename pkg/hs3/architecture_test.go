package hs3

import (
	"testing"

	"statcore/testutil"
)

func TestCodecDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "pkg/hs3 is a public codec and must not reach into internal packages")
}
