package repositories

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageBeyondTotal(t *testing.T) {
	assert.False(t, pageBeyondTotal(1, 10, 0))
	assert.False(t, pageBeyondTotal(2, 10, 11))
	assert.True(t, pageBeyondTotal(3, 10, 20))
	assert.True(t, pageBeyondTotal(2, 10, 0))
	assert.True(t, pageBeyondTotal(math.MaxInt, 100, 5))
	assert.False(t, pageBeyondTotal(math.MaxInt, 0, 5), "без пагинации страниц нет")
}
