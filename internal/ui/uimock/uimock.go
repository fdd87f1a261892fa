// Package uimock has mocks for the ui package interfaces.
package uimock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/dirkste/compass-automation/internal/ui"
)

// MockSession is a mock implementation of the ui.Session interface.
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Find(ctx context.Context, q ui.Query) ([]ui.Element, error) {
	args := m.Called(ctx, q)
	els, _ := args.Get(0).([]ui.Element)
	return els, args.Error(1)
}

func (m *MockSession) Open(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSession) Home(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockElement is a mock implementation of the ui.Element interface.
type MockElement struct {
	mock.Mock
}

func (m *MockElement) Key() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockElement) Text() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockElement) Visible() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockElement) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockElement) Attr(name string) string {
	args := m.Called(name)
	return args.String(0)
}

func (m *MockElement) Click(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockElement) Invoke(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockElement) SetText(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

func (m *MockElement) ScrollIntoView(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
