// Package mocks provides test doubles for the crunchbase client.
package mocks

import (
	"context"

	crunchbase "github.com/sells-group/venture-watch/pkg/crunchbase"
	mock "github.com/stretchr/testify/mock"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// SearchFundingRounds provides a mock function with given fields: ctx, q
func (_m *MockClient) SearchFundingRounds(ctx context.Context, q crunchbase.FundingRoundQuery) ([]crunchbase.FundingRound, error) {
	ret := _m.Called(ctx, q)

	if len(ret) == 0 {
		panic("no return value specified for SearchFundingRounds")
	}

	var r0 []crunchbase.FundingRound
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, crunchbase.FundingRoundQuery) ([]crunchbase.FundingRound, error)); ok {
		return rf(ctx, q)
	}
	if rf, ok := ret.Get(0).(func(context.Context, crunchbase.FundingRoundQuery) []crunchbase.FundingRound); ok {
		r0 = rf(ctx, q)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]crunchbase.FundingRound)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, crunchbase.FundingRoundQuery) error); ok {
		r1 = rf(ctx, q)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetOrganization provides a mock function with given fields: ctx, permalink
func (_m *MockClient) GetOrganization(ctx context.Context, permalink string) (*crunchbase.Organization, error) {
	ret := _m.Called(ctx, permalink)

	if len(ret) == 0 {
		panic("no return value specified for GetOrganization")
	}

	var r0 *crunchbase.Organization
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*crunchbase.Organization, error)); ok {
		return rf(ctx, permalink)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *crunchbase.Organization); ok {
		r0 = rf(ctx, permalink)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*crunchbase.Organization)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, permalink)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
