// Package mocks provides test doubles for the run store.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	model "github.com/sells-group/venture-watch/internal/model"
	store "github.com/sells-group/venture-watch/internal/store"
)

// MockStore is a mock type for the Store interface.
type MockStore struct {
	mock.Mock
}

// CreateRun provides a mock function with given fields: ctx, trigger
func (_m *MockStore) CreateRun(ctx context.Context, trigger model.Trigger) (*model.Run, error) {
	ret := _m.Called(ctx, trigger)

	if len(ret) == 0 {
		panic("no return value specified for CreateRun")
	}

	var r0 *model.Run
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Run)
	}
	return r0, ret.Error(1)
}

// CompleteRun provides a mock function with given fields: ctx, runID, result
func (_m *MockStore) CompleteRun(ctx context.Context, runID string, result *model.RunResult) error {
	ret := _m.Called(ctx, runID, result)

	if len(ret) == 0 {
		panic("no return value specified for CompleteRun")
	}
	return ret.Error(0)
}

// FailRun provides a mock function with given fields: ctx, runID, result, runErr
func (_m *MockStore) FailRun(ctx context.Context, runID string, result *model.RunResult, runErr error) error {
	ret := _m.Called(ctx, runID, result, runErr)

	if len(ret) == 0 {
		panic("no return value specified for FailRun")
	}
	return ret.Error(0)
}

// GetRun provides a mock function with given fields: ctx, runID
func (_m *MockStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	ret := _m.Called(ctx, runID)

	if len(ret) == 0 {
		panic("no return value specified for GetRun")
	}

	var r0 *model.Run
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Run)
	}
	return r0, ret.Error(1)
}

// ListRuns provides a mock function with given fields: ctx, filter
func (_m *MockStore) ListRuns(ctx context.Context, filter store.RunFilter) ([]model.Run, error) {
	ret := _m.Called(ctx, filter)

	if len(ret) == 0 {
		panic("no return value specified for ListRuns")
	}

	var r0 []model.Run
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Run)
	}
	return r0, ret.Error(1)
}

// SaveBenchmark provides a mock function with given fields: ctx, b
func (_m *MockStore) SaveBenchmark(ctx context.Context, b *model.Benchmark) error {
	ret := _m.Called(ctx, b)

	if len(ret) == 0 {
		panic("no return value specified for SaveBenchmark")
	}
	return ret.Error(0)
}

// LatestBenchmark provides a mock function with given fields: ctx
func (_m *MockStore) LatestBenchmark(ctx context.Context) (*model.Benchmark, error) {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for LatestBenchmark")
	}

	var r0 *model.Benchmark
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*model.Benchmark)
	}
	return r0, ret.Error(1)
}

// ListBenchmarks provides a mock function with given fields: ctx, limit
func (_m *MockStore) ListBenchmarks(ctx context.Context, limit int) ([]model.Benchmark, error) {
	ret := _m.Called(ctx, limit)

	if len(ret) == 0 {
		panic("no return value specified for ListBenchmarks")
	}

	var r0 []model.Benchmark
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]model.Benchmark)
	}
	return r0, ret.Error(1)
}

// Migrate provides a mock function with given fields: ctx
func (_m *MockStore) Migrate(ctx context.Context) error {
	ret := _m.Called(ctx)

	if len(ret) == 0 {
		panic("no return value specified for Migrate")
	}
	return ret.Error(0)
}

// Close provides a mock function with no fields
func (_m *MockStore) Close() error {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}
	return ret.Error(0)
}

// NewMockStore creates a new instance of MockStore. It also registers a
// testing interface on the mock and a cleanup function to assert the mocks
// expectations.
func NewMockStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStore {
	mock := &MockStore{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

var _ store.Store = (*MockStore)(nil)
