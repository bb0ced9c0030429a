// Package mocks provides test doubles for database transaction management.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// PassthroughTxManager executes the callback directly without opening a real
// transaction. Useful for use case tests where repositories are mocked.
type PassthroughTxManager struct{}

// WithTx runs fn with the unmodified context.
func (PassthroughTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockTxManager is a mock implementation of TxManager for tests that assert
// on transaction usage. The callback is still executed when the configured
// return value is nil.
type MockTxManager struct {
	mock.Mock
}

// WithTx mocks the WithTx method of TxManager.
func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
