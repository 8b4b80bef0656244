package wait_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/xkilldash9x/widgetry/internal/driver/drivertest"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/wait"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newEngine(f *drivertest.Fake) *wait.Engine {
	return wait.NewEngine(f, 300*time.Millisecond, 10*time.Millisecond)
}

func TestUntilImmediate(t *testing.T) {
	fake := drivertest.New()
	loc := locator.XPath("//el")
	el := drivertest.NewElem("here")
	fake.Set(loc, el)

	h, err := newEngine(fake).Until(context.Background(), wait.Present(loc), 0)
	require.NoError(t, err)
	assert.Same(t, el, h)
}

func TestUntilEventually(t *testing.T) {
	fake := drivertest.New()
	loc := locator.XPath("//el")
	el := drivertest.NewElem("late")
	timer := time.AfterFunc(50*time.Millisecond, func() { fake.Set(loc, el) })
	defer timer.Stop()

	start := time.Now()
	h, err := newEngine(fake).Until(context.Background(), wait.Present(loc), 0)
	require.NoError(t, err)
	assert.Same(t, el, h)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestUntilTimeout(t *testing.T) {
	fake := drivertest.New()
	loc := locator.XPath("//never")

	start := time.Now()
	_, err := newEngine(fake).Until(context.Background(), wait.Present(loc), 100*time.Millisecond)
	require.Error(t, err)
	assert.True(t, wait.IsTimeout(err))
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)

	var terr *wait.TimeoutError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 100*time.Millisecond, terr.Timeout)
	assert.Contains(t, terr.Error(), loc.String())
}

func TestUntilEvaluatesAtLeastOnceWithZeroBudget(t *testing.T) {
	fake := drivertest.New()
	loc := locator.XPath("//el")
	fake.Set(loc, drivertest.NewElem("here"))

	engine := wait.NewEngine(fake, 0, 10*time.Millisecond)
	h, err := engine.Until(context.Background(), wait.Present(loc), 0)
	require.NoError(t, err)
	require.NotNil(t, h)
}

func TestUntilContextCancel(t *testing.T) {
	fake := drivertest.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEngine(fake).Until(ctx, wait.Present(locator.XPath("//el")), 0)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, wait.IsTimeout(err))
}

func TestUntilVisibleSkipsHidden(t *testing.T) {
	fake := drivertest.New()
	loc := locator.XPath("//el")
	el := drivertest.NewElem("hidden")
	el.Shown = false
	fake.Set(loc, el)
	timer := time.AfterFunc(50*time.Millisecond, func() { el.SetShown(true) })
	defer timer.Stop()

	h, err := newEngine(fake).Until(context.Background(), wait.Visible(loc), 0)
	require.NoError(t, err)
	assert.Same(t, el, h)
}

func TestUntilClickableRequiresEnabled(t *testing.T) {
	fake := drivertest.New()
	loc := locator.XPath("//el")
	el := drivertest.NewElem("disabled")
	el.IsEnabled = false
	fake.Set(loc, el)

	_, err := newEngine(fake).Until(context.Background(), wait.Clickable(loc), 80*time.Millisecond)
	assert.True(t, wait.IsTimeout(err))
}

func TestUntilManyAnyVisible(t *testing.T) {
	fake := drivertest.New()
	loc := locator.XPath("//li")
	hidden := drivertest.NewElem("hidden")
	hidden.Shown = false
	shown := drivertest.NewElem("shown")
	fake.Set(loc, hidden, shown)

	hs, err := newEngine(fake).UntilMany(context.Background(), wait.AnyVisible(loc), 0)
	require.NoError(t, err)
	require.Len(t, hs, 1)
	assert.Same(t, shown, hs[0])
}

func TestUntilManyAllPresent(t *testing.T) {
	fake := drivertest.New()
	loc := locator.XPath("//li")
	fake.Set(loc, drivertest.NewElem("a"), drivertest.NewElem("b"))

	hs, err := newEngine(fake).UntilMany(context.Background(), wait.AllPresent(loc), 0)
	require.NoError(t, err)
	assert.Len(t, hs, 2)
}

func TestUntilTrueInvisibility(t *testing.T) {
	fake := drivertest.New()
	loc := locator.XPath("//spinner")
	el := drivertest.NewElem("loading")
	fake.Set(loc, el)
	timer := time.AfterFunc(50*time.Millisecond, func() { el.SetShown(false) })
	defer timer.Stop()

	err := newEngine(fake).UntilTrue(context.Background(), wait.IsInvisible(loc), 0)
	require.NoError(t, err)
}

func TestUntilNot(t *testing.T) {
	fake := drivertest.New()
	el := drivertest.NewElem("toast")
	timer := time.AfterFunc(50*time.Millisecond, func() { el.SetShown(false) })
	defer timer.Stop()

	err := newEngine(fake).UntilNot(context.Background(), wait.DisplayedOf(el), 0)
	require.NoError(t, err)
}

func TestIsTimeoutOnWrappedError(t *testing.T) {
	terr := &wait.TimeoutError{Condition: "x", Timeout: time.Second}
	assert.True(t, wait.IsTimeout(terr))
	assert.False(t, wait.IsTimeout(context.DeadlineExceeded))
	assert.False(t, wait.IsTimeout(nil))
}
