package mocks

import (
	"errors"

	"github.com/taskhub/taskhub-api/internal/service/auth"
)

// ErrMockHashFailure is returned by MockPasswordHasher when configured to fail.
var ErrMockHashFailure = errors.New("mock hash failure")

// ErrMockCompareFailure is returned by MockPasswordVerifier when configured
// to reject the comparison.
var ErrMockCompareFailure = errors.New("mock compare failure")

// MockPasswordHasher implements auth.PasswordHasher for testing
type MockPasswordHasher struct {
	HashFn func(password string) (string, error)

	// ShouldSucceed controls the default implementation.
	ShouldSucceed bool
}

// Ensure MockPasswordHasher implements auth.PasswordHasher interface
var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements the PasswordHasher interface
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}

	if !m.ShouldSucceed {
		return "", ErrMockHashFailure
	}
	return "hashed:" + password, nil
}

// MockPasswordVerifier implements auth.PasswordVerifier for testing
type MockPasswordVerifier struct {
	CompareFn func(hashedPassword, password string) error

	// ShouldSucceed controls the default implementation.
	ShouldSucceed bool
}

// Ensure MockPasswordVerifier implements auth.PasswordVerifier interface
var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

// Compare implements the PasswordVerifier interface
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}

	if !m.ShouldSucceed {
		return ErrMockCompareFailure
	}
	return nil
}
