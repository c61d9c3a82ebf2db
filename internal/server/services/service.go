// Package services contains the server-side business logic: the OTP-driven
// onboarding flow and the access/refresh session protocol, both operating on
// the Account Store.
package services

import (
	"strings"
	"sync"
)

// Confirmation is the outcome returned by onboarding operations.
type Confirmation struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// NormalizeEmail lowercases and trims an email address. Accounts are keyed by
// the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// KeyedMutex serializes read-modify-write flows per account. Onboarding
// operations lock by normalized email, session operations by account ID; a
// single instance is shared by both services so flows for the same account
// never interleave. Notifier I/O is always performed outside the lock.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex constructs an empty lock set.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
