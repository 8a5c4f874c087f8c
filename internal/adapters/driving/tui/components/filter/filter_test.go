package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/insight/internal/core/domain"
)

func TestCycle(t *testing.T) {
	c := NewCycle()

	assert.Equal(t, "All authors", c.Label())
	assert.True(t, c.Filter().IsEmpty())

	c.Next()
	assert.Equal(t, domain.AuthorBahaullah.Label(), c.Label())
	assert.Equal(t, []domain.AuthorTag{domain.AuthorBahaullah}, c.Filter().Tags())

	for range domain.AllAuthorTags() {
		c.Next()
	}
	assert.Equal(t, "All authors", c.Label(), "wraps after the last author")

	c.Next()
	c.Next()
	c.Reset()
	assert.True(t, c.Filter().IsEmpty())
}
