package preview_test

import (
	"testing"

	"github.com/fwojciec/preview"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTheme(t *testing.T) {
	t.Parallel()

	theme := preview.DefaultTheme()

	assert.Equal(t, 5, theme.Heading)
	assert.Equal(t, 4, theme.Link)
	assert.Equal(t, 6, theme.Hashtag)
	assert.Equal(t, 3, theme.Code)
	assert.Equal(t, 2, theme.Math)
	assert.Equal(t, 8, theme.Quote)
	assert.Equal(t, 8, theme.Muted)
	assert.Equal(t, 1, theme.Error)
	assert.Equal(t, 5, theme.Accent)
}
