// Copyright (c) 2026 Laurea. All rights reserved.

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// passwordAlphabet mixes cases, digits, and URL-safe symbols. No ambiguous
// pairs are excluded: generated credentials are delivered by mail and pasted,
// never transcribed by hand.
const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// GeneratedPasswordLength is the length of server-generated judge credentials.
// 24 characters over a 64-symbol alphabet gives 144 bits of entropy.
const GeneratedPasswordLength = 24

// GeneratePassword returns a random high-entropy password of n characters.
//
// Used by judge provisioning, where the admin never supplies a password and
// the generated credential is dispatched to the judge out of band.
func GeneratePassword(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(passwordAlphabet)))

	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("sec: failed to generate password: %w", err)
		}
		out[i] = passwordAlphabet[idx.Int64()]
	}

	return string(out), nil
}
