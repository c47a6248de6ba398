// ABOUTME: Tests for the trigger-coalescing TTL cache
// ABOUTME: Covers mark/check atomicity, expiry, and size-bounded eviction

package dedupe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckAndMark_FirstSeen(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	assert.False(t, c.CheckAndMark("msg-1"))
	assert.True(t, c.CheckAndMark("msg-1"))
}

func TestCheckAndMark_DistinctKeys(t *testing.T) {
	c := New(time.Minute, 10)
	defer c.Close()

	assert.False(t, c.CheckAndMark("msg-1"))
	assert.False(t, c.CheckAndMark("msg-2"))
}

func TestCheckAndMark_Expiry(t *testing.T) {
	c := New(20*time.Millisecond, 10)
	defer c.Close()

	assert.False(t, c.CheckAndMark("msg-1"))
	time.Sleep(30 * time.Millisecond)
	assert.False(t, c.CheckAndMark("msg-1"))
}

func TestEviction_OldestFirst(t *testing.T) {
	c := New(time.Minute, 2)
	defer c.Close()

	c.CheckAndMark("a")
	c.CheckAndMark("b")
	c.CheckAndMark("c") // evicts a

	assert.False(t, c.CheckAndMark("a"))
	assert.True(t, c.CheckAndMark("c"))
}

func TestClose_Idempotent(t *testing.T) {
	c := New(time.Minute, 10)
	c.Close()
	c.Close()
}
