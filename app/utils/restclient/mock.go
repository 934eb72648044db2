package restclient

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockRestClient struct {
	mock.Mock
}

var _ Interface = &MockRestClient{}

func (m *MockRestClient) Get(ctx context.Context, endpoint string, headers map[string]string) ([]byte, int, error) {
	args := m.Called(ctx, endpoint, headers)
	return bytesArg(args, 0), args.Int(1), args.Error(2)
}

func (m *MockRestClient) Post(ctx context.Context, endpoint string, body any, headers map[string]string) ([]byte, int, error) {
	args := m.Called(ctx, endpoint, body, headers)
	return bytesArg(args, 0), args.Int(1), args.Error(2)
}

func bytesArg(args mock.Arguments, i int) []byte {
	if b, ok := args.Get(i).([]byte); ok {
		return b
	}
	return nil
}
