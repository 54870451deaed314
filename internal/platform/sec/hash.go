// Copyright (c) 2026 Laurea. All rights reserved.

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor for all stored credentials.
const HashCost = 12

// HashPassword hashes a plain-text password using the bcrypt algorithm.
//
// The output differs on every call for the same input (random salt);
// verification via [CheckPasswordHash] is deterministic. Safe for concurrent
// use — bcrypt holds no shared state.
func HashPassword(plainTextPassword string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), HashCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckPasswordHash compares a plain-text password with its hashed version.
//
// It returns false (never an error) on malformed hash input, so callers can
// treat any non-match identically without leaking why verification failed.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	return err == nil
}
