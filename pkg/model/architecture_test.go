package model

import (
	"testing"

	"statcore/testutil"
)

// TestModelDoesNotImportInternal keeps the public model free of internal
// implementation packages.
func TestModelDoesNotImportInternal(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden, "pkg/model must stay independent of internal packages")
}
