package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/widgetry/internal/driver/drivertest"
	"github.com/xkilldash9x/widgetry/internal/locator"
	"github.com/xkilldash9x/widgetry/internal/page"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScript(t *testing.T) {
	path := writeTempFile(t, "script.yaml", `
url: https://example.test/login
steps:
  - page: login
    widget: username
    action: set
    value: admin
  - page: login
    widget: submit
    action: click
`)
	scr, err := loadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/login", scr.URL)
	require.Len(t, scr.Steps, 2)
	assert.Equal(t, "set", scr.Steps[0].Action)
	assert.Equal(t, "admin", scr.Steps[0].Value)
	assert.Equal(t, "click", scr.Steps[1].Action)
}

func TestLoadScriptValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing url", "steps:\n  - page: p\n    widget: w\n    action: click\n"},
		{"no steps", "url: https://example.test\n"},
		{"malformed yaml", "url: [unterminated\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, "script.yaml", tt.content)
			_, err := loadScript(path)
			require.Error(t, err)
		})
	}
}

func TestLoadScriptMissingFile(t *testing.T) {
	_, err := loadScript(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func testPage(t *testing.T, fake *drivertest.Fake) *page.Page {
	t.Helper()
	defs, err := page.Parse(strings.NewReader(`
pages:
  login:
    widgets:
      username:
        kind: textbox
        options:
          xpath: "//input"
      remember:
        kind: checkbox
        options:
          xpath: "//check"
      submit:
        kind: button
        options:
          xpath: "//button"
      tags:
        kind: combobox
        options:
          xpath: "//tags"
`))
	require.NoError(t, err)
	book, err := page.Build(defs)
	require.NoError(t, err)
	p, err := book.Open("login", fake, page.BindOptions{
		Timeout:    200 * time.Millisecond,
		Interval:   10 * time.Millisecond,
		RetryDelay: time.Millisecond,
		Log:        zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return p
}

func TestExecuteStepActions(t *testing.T) {
	fake := drivertest.New()
	input := drivertest.NewElem("")
	check := drivertest.NewElem("")
	button := drivertest.NewElem("Log in")
	tags := drivertest.NewElem("")
	fake.Set(locator.XPath("//input"), input)
	fake.Set(locator.XPath("//check"), check)
	fake.Set(locator.XPath("//button"), button)
	fake.Set(locator.XPath("//tags"), tags)

	p := testPage(t, fake)
	ctx := context.Background()

	require.NoError(t, executeStep(ctx, p, step{Widget: "username", Action: "set", Value: "admin"}))
	assert.Equal(t, "admin", input.Value())

	require.NoError(t, executeStep(ctx, p, step{Widget: "username", Action: "get"}))

	require.NoError(t, executeStep(ctx, p, step{Widget: "remember", Action: "check"}))
	assert.Equal(t, 1, check.ClickCount())

	require.NoError(t, executeStep(ctx, p, step{Widget: "submit", Action: "click"}))
	assert.Equal(t, 1, button.ClickCount())

	// A combobox with no lookup context accepts multiple values in degraded
	// raw-text mode.
	require.NoError(t, executeStep(ctx, p, step{Widget: "tags", Action: "set", Values: []string{"go", "web"}}))
	assert.Contains(t, tags.Typed, "go")
	assert.Contains(t, tags.Typed, "web")
}

func TestExecuteStepUnknownAction(t *testing.T) {
	p := testPage(t, drivertest.New())
	err := executeStep(context.Background(), p, step{Widget: "submit", Action: "hover"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
}

func TestExecuteStepMultiValueOnPlainWidget(t *testing.T) {
	fake := drivertest.New()
	fake.Set(locator.XPath("//input"), drivertest.NewElem(""))
	p := testPage(t, fake)

	err := executeStep(context.Background(), p, step{Widget: "username", Action: "set", Values: []string{"a", "b"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple values")
}
