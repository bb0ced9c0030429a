// Package mocks provides mock implementations for crypto service testing.
package mocks

import (
	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
)

// MockKeyManager is a mock implementation of KeyManager.
type MockKeyManager struct {
	mock.Mock
}

// CreateKeyset mocks the CreateKeyset method of KeyManager.
func (m *MockKeyManager) CreateKeyset(
	masterKey *cryptoDomain.MasterKey,
	generation uint,
	alg cryptoDomain.Algorithm,
) (cryptoDomain.Keyset, error) {
	args := m.Called(masterKey, generation, alg)
	return args.Get(0).(cryptoDomain.Keyset), args.Error(1)
}

// UnwrapKeyset mocks the UnwrapKeyset method of KeyManager.
func (m *MockKeyManager) UnwrapKeyset(
	keyset *cryptoDomain.Keyset,
	masterKey *cryptoDomain.MasterKey,
) error {
	args := m.Called(keyset, masterKey)
	return args.Error(0)
}

// DeriveKey mocks the DeriveKey method of KeyManager.
func (m *MockKeyManager) DeriveKey(rootKey []byte, purpose string) ([]byte, error) {
	args := m.Called(rootKey, purpose)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
