package vectordb

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

var _ Interface = &MockStore{}

func (m *MockStore) ClassExists(ctx context.Context, class string) (bool, error) {
	args := m.Called(ctx, class)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateClass(ctx context.Context, class Class) error {
	args := m.Called(ctx, class)
	return args.Error(0)
}

func (m *MockStore) BatchObjects(ctx context.Context, objects []Object) ([]ObjectResult, error) {
	args := m.Called(ctx, objects)
	res, _ := args.Get(0).([]ObjectResult)
	return res, args.Error(1)
}

func (m *MockStore) NearText(ctx context.Context, query NearTextQuery) (*QueryResult, error) {
	args := m.Called(ctx, query)
	res, _ := args.Get(0).(*QueryResult)
	return res, args.Error(1)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}
