// Package mocks provides test doubles for stevedore's actions.
package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/nicholas-fedor/stevedore/pkg/types"
)

// MockEngine is a testify mock of types.Engine.
type MockEngine struct {
	mock.Mock
}

// NewMockEngine creates a MockEngine that fails the test on unexpected calls.
func NewMockEngine(t mock.TestingT) *MockEngine {
	m := &MockEngine{}
	m.Test(t)

	return m
}

func (m *MockEngine) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockEngine) ListImagesByRepository(
	ctx context.Context,
	repository string,
) ([]types.ImageSummary, error) {
	args := m.Called(ctx, repository)
	images, _ := args.Get(0).([]types.ImageSummary)

	return images, args.Error(1)
}

func (m *MockEngine) ListContainersByImage(ctx context.Context, ref string) ([]string, error) {
	args := m.Called(ctx, ref)
	ids, _ := args.Get(0).([]string)

	return ids, args.Error(1)
}

func (m *MockEngine) RemoveContainer(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockEngine) RemoveImage(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

func (m *MockEngine) ImageExists(ctx context.Context, ref string) (bool, error) {
	args := m.Called(ctx, ref)

	return args.Bool(0), args.Error(1)
}

func (m *MockEngine) ImageSize(ctx context.Context, ref string) (string, error) {
	args := m.Called(ctx, ref)

	return args.String(0), args.Error(1)
}

func (m *MockEngine) BuildImage(ctx context.Context, opts types.BuildOptions, out io.Writer) error {
	return m.Called(ctx, opts, out).Error(0)
}

func (m *MockEngine) TagImage(ctx context.Context, source, target string) error {
	return m.Called(ctx, source, target).Error(0)
}

func (m *MockEngine) PushImage(ctx context.Context, ref string, out io.Writer) error {
	return m.Called(ctx, ref, out).Error(0)
}

func (m *MockEngine) Login(ctx context.Context, creds types.RegistryCredentials) error {
	return m.Called(ctx, creds).Error(0)
}

func (m *MockEngine) RunContainer(ctx context.Context, opts types.RunOptions) (string, error) {
	args := m.Called(ctx, opts)

	return args.String(0), args.Error(1)
}

// MutatingCalls returns the names and first arguments of every removal call, in call order.
func (m *MockEngine) MutatingCalls() []string {
	calls := []string{}

	for _, call := range m.Calls {
		switch call.Method {
		case "RemoveContainer", "RemoveImage", "TagImage", "PushImage", "BuildImage", "RunContainer":
			calls = append(calls, call.Method+" "+describe(call.Arguments))
		}
	}

	return calls
}

func describe(args mock.Arguments) string {
	if len(args) < 2 { //nolint:mnd
		return ""
	}

	if value, ok := args.Get(1).(string); ok {
		return value
	}

	return ""
}
