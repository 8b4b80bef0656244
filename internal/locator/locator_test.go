package locator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/widgetry/internal/locator"
)

func TestFromKeyAliases(t *testing.T) {
	tests := []struct {
		key  string
		want locator.Strategy
	}{
		{"class", locator.ByClassName},
		{"class_name", locator.ByClassName},
		{"css", locator.ByCSS},
		{"css_selector", locator.ByCSS},
		{"id", locator.ByID},
		{"link", locator.ByLinkText},
		{"link_text", locator.ByLinkText},
		{"name", locator.ByName},
		{"partial_link", locator.ByPartialLinkText},
		{"partial_link_text", locator.ByPartialLinkText},
		{"tag", locator.ByTagName},
		{"tag_name", locator.ByTagName},
		{"xpath", locator.ByXPath},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.True(t, locator.IsLocatorKey(tt.key))
			loc, err := locator.FromKey(tt.key, "value")
			require.NoError(t, err)
			assert.Equal(t, tt.want, loc.Strategy)
			assert.Equal(t, "value", loc.Value)
		})
	}
}

func TestFromKeyUnknown(t *testing.T) {
	assert.False(t, locator.IsLocatorKey("selector"))
	_, err := locator.FromKey("selector", "value")
	require.Error(t, err)
}

func TestIsZero(t *testing.T) {
	assert.True(t, locator.Locator{}.IsZero())
	assert.False(t, locator.XPath("//el").IsZero())
}

func TestString(t *testing.T) {
	assert.Equal(t, `xpath="//el"`, locator.XPath("//el").String())
}

func TestChildren(t *testing.T) {
	children, err := locator.XPath("//ul").Children()
	require.NoError(t, err)
	assert.Equal(t, locator.XPath("//ul/*"), children)

	_, err = locator.New(locator.ByCSS, "#list").Children()
	require.Error(t, err)
}

func TestFirstChild(t *testing.T) {
	first, err := locator.XPath("//ul").FirstChild()
	require.NoError(t, err)
	assert.Equal(t, locator.XPath("//ul/*[1]"), first)

	_, err = locator.New(locator.ByID, "list").FirstChild()
	require.Error(t, err)
}
