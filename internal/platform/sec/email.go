// Copyright (c) 2026 Laurea. All rights reserved.

package sec

import (
	"strings"

	"golang.org/x/text/cases"
)

// CanonicalEmail folds an email address to its canonical lookup form.
//
// # Why Unicode case folding?
//
// Emails are unique case-insensitively within each principal variant. Plain
// ASCII lowercasing mishandles addresses with non-ASCII local parts, so we
// use full Unicode case folding, which is stable for comparison purposes.
// Every store lookup and insert goes through this function.
func CanonicalEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}
