package fake_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrun/wrun/internal/browser/fake"
	"github.com/wrun/wrun/internal/model"
)

func TestDriverRecordsActions(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()

	driver, err := fake.NewDriver(fake.DriverConfig{
		FailSelectors: []string{"#broken"},
	})
	require.NoError(err)

	bctx, err := driver.NewContext(ctx)
	require.NoError(err)

	page, err := bctx.NewPage(ctx)
	require.NoError(err)

	require.NoError(page.Navigate(ctx, "https://app.test", model.WaitPolicyDOMReady, time.Second))
	require.NoError(page.Fill(ctx, "#user", "alice", time.Second))
	require.ErrorIs(page.Click(ctx, "#broken", time.Second), model.ErrNotFound)

	assert.Equal([]string{
		"navigate https://app.test",
		"fill #user",
		"click #broken",
	}, driver.Actions())
	assert.Equal(1, driver.ContextCount())
	assert.Equal("https://app.test", page.URL())
}

func TestDriverPopupFlow(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	ctx := context.Background()

	driver, err := fake.NewDriver(fake.DriverConfig{
		PopupTrigger: "#swap",
		PopupText:    "Confirm transaction",
		PopupButtons: []string{"#approve"},
	})
	require.NoError(err)

	bctx, err := driver.NewContext(ctx)
	require.NoError(err)
	page, err := bctx.NewPage(ctx)
	require.NoError(err)

	require.NoError(page.Click(ctx, "#swap", time.Second))

	// The popup shows up both in the page list and via the new-page wait.
	pages, err := bctx.Pages(ctx)
	require.NoError(err)
	require.Len(pages, 2)

	popup, err := bctx.WaitForPage(ctx, 10*time.Millisecond)
	require.NoError(err)
	assert.Equal("chrome-extension://fake/notification.html", popup.URL())

	text, err := popup.Text(ctx)
	require.NoError(err)
	assert.Equal("Confirm transaction", text)

	sel, err := popup.ClickFirstVisible(ctx, []string{"#reject", "#approve"})
	require.NoError(err)
	assert.Equal("#approve", sel)
	assert.True(popup.Closed())
	require.NoError(popup.WaitClosed(ctx, time.Millisecond))
}

func TestDriverWaitForPageTimeout(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	driver, err := fake.NewDriver(fake.DriverConfig{})
	require.NoError(err)

	bctx, err := driver.NewContext(ctx)
	require.NoError(err)

	_, err = bctx.WaitForPage(ctx, 5*time.Millisecond)
	require.ErrorIs(err, model.ErrNotFound)
}

func TestDriverWaitClosedTimesOutOnOpenPage(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	driver, err := fake.NewDriver(fake.DriverConfig{})
	require.NoError(err)

	bctx, err := driver.NewContext(ctx)
	require.NoError(err)
	page, err := bctx.NewPage(ctx)
	require.NoError(err)

	require.ErrorIs(page.WaitClosed(ctx, time.Millisecond), model.ErrTimeout)

	require.NoError(page.Close())
	require.NoError(page.WaitClosed(ctx, time.Millisecond))
}

func TestDriverClosedRejectsNewContexts(t *testing.T) {
	require := require.New(t)

	driver, err := fake.NewDriver(fake.DriverConfig{})
	require.NoError(err)
	require.NoError(driver.Close())

	_, err = driver.NewContext(context.Background())
	require.Error(err)
}
