// Package browsermock contains testify mocks for the browser driver
// interfaces.
package browsermock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wrun/wrun/internal/browser"
	"github.com/wrun/wrun/internal/model"
)

// MockDriver is a mock implementation of browser.Driver.
type MockDriver struct {
	mock.Mock
}

func (m *MockDriver) Check(ctx context.Context) []model.CheckResult {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]model.CheckResult)
	return res
}

func (m *MockDriver) NewContext(ctx context.Context) (browser.Context, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(browser.Context)
	return res, args.Error(1)
}

func (m *MockDriver) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockContext is a mock implementation of browser.Context.
type MockContext struct {
	mock.Mock
}

func (m *MockContext) NewPage(ctx context.Context) (browser.Page, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(browser.Page)
	return res, args.Error(1)
}

func (m *MockContext) Pages(ctx context.Context) ([]browser.Page, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]browser.Page)
	return res, args.Error(1)
}

func (m *MockContext) WaitForPage(ctx context.Context, timeout time.Duration) (browser.Page, error) {
	args := m.Called(ctx, timeout)
	res, _ := args.Get(0).(browser.Page)
	return res, args.Error(1)
}

func (m *MockContext) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockPage is a mock implementation of browser.Page.
type MockPage struct {
	mock.Mock
}

func (m *MockPage) Navigate(ctx context.Context, url string, wait model.WaitPolicy, timeout time.Duration) error {
	args := m.Called(ctx, url, wait, timeout)
	return args.Error(0)
}

func (m *MockPage) Click(ctx context.Context, selector string, timeout time.Duration) error {
	args := m.Called(ctx, selector, timeout)
	return args.Error(0)
}

func (m *MockPage) Fill(ctx context.Context, selector, value string, timeout time.Duration) error {
	args := m.Called(ctx, selector, value, timeout)
	return args.Error(0)
}

func (m *MockPage) SelectOption(ctx context.Context, selector, value string, timeout time.Duration) error {
	args := m.Called(ctx, selector, value, timeout)
	return args.Error(0)
}

func (m *MockPage) SetChecked(ctx context.Context, selector string, checked bool, timeout time.Duration) error {
	args := m.Called(ctx, selector, checked, timeout)
	return args.Error(0)
}

func (m *MockPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	args := m.Called(ctx, selector, timeout)
	return args.Error(0)
}

func (m *MockPage) Evaluate(ctx context.Context, script string) (string, error) {
	args := m.Called(ctx, script)
	return args.String(0), args.Error(1)
}

func (m *MockPage) Type(ctx context.Context, selector, text string, delay, timeout time.Duration) error {
	args := m.Called(ctx, selector, text, delay, timeout)
	return args.Error(0)
}

func (m *MockPage) Hover(ctx context.Context, selector string, timeout time.Duration) error {
	args := m.Called(ctx, selector, timeout)
	return args.Error(0)
}

func (m *MockPage) Press(ctx context.Context, selector, key string, timeout time.Duration) error {
	args := m.Called(ctx, selector, key, timeout)
	return args.Error(0)
}

func (m *MockPage) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	args := m.Called(ctx, fullPage)
	res, _ := args.Get(0).([]byte)
	return res, args.Error(1)
}

func (m *MockPage) Text(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPage) ClickFirstVisible(ctx context.Context, selectors []string) (string, error) {
	args := m.Called(ctx, selectors)
	return args.String(0), args.Error(1)
}

func (m *MockPage) WaitClosed(ctx context.Context, timeout time.Duration) error {
	args := m.Called(ctx, timeout)
	return args.Error(0)
}

func (m *MockPage) URL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPage) Closed() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockPage) Close() error {
	args := m.Called()
	return args.Error(0)
}
