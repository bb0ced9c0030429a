// Package mocks provides mock implementations for keyset use case testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	cryptoDomain "github.com/allisson/privmetrics/internal/crypto/domain"
)

// MockKeysetRepository is a mock implementation of KeysetRepository.
type MockKeysetRepository struct {
	mock.Mock
}

// Create mocks the Create method of KeysetRepository.
func (m *MockKeysetRepository) Create(ctx context.Context, keyset *cryptoDomain.Keyset) error {
	args := m.Called(ctx, keyset)
	return args.Error(0)
}

// GetByGeneration mocks the GetByGeneration method of KeysetRepository.
func (m *MockKeysetRepository) GetByGeneration(
	ctx context.Context,
	generation uint,
) (*cryptoDomain.Keyset, error) {
	args := m.Called(ctx, generation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cryptoDomain.Keyset), args.Error(1)
}

// List mocks the List method of KeysetRepository.
func (m *MockKeysetRepository) List(ctx context.Context) ([]*cryptoDomain.Keyset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cryptoDomain.Keyset), args.Error(1)
}

// Retire mocks the Retire method of KeysetRepository.
func (m *MockKeysetRepository) Retire(ctx context.Context, generation uint) error {
	args := m.Called(ctx, generation)
	return args.Error(0)
}

// Destroy mocks the Destroy method of KeysetRepository.
func (m *MockKeysetRepository) Destroy(ctx context.Context, generation uint) error {
	args := m.Called(ctx, generation)
	return args.Error(0)
}
