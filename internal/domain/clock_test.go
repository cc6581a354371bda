package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestNow(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	assert.Equal(t, fixed, Now())

	SetClock(nil)
	assert.WithinDuration(t, time.Now(), Now(), time.Second)
}
