package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAddCreatesPair(t *testing.T) {
	reg := NewRegistry()
	code, err := reg.Add("a", "x := 1", "```go\nx := 1\n```")
	require.NoError(t, err)

	assert.Equal(t, "a", code.ID)
	assert.Equal(t, DisplayUnset, code.Display)
	assert.Equal(t, "x := 1", code.Text)

	btn, err := reg.CopyButton("a")
	require.NoError(t, err)
	assert.Equal(t, "a", btn.ID)
	assert.Equal(t, DisplayUnset, btn.Display)
}

func TestRegistryRejectsDuplicateAndEmptyIDs(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Add("a", "", "")
	require.NoError(t, err)

	_, err = reg.Add("a", "", "")
	assert.ErrorContains(t, err, "duplicate")
	_, err = reg.Add("", "", "")
	assert.Error(t, err)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryLookupErrors(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Code("x")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.EqualError(t, err, `no code block with id "x"`)

	_, err = reg.CopyButton("x")
	assert.EqualError(t, err, `no copy button with id "x"`)
}

func TestRegistryIDsKeepInsertionOrder(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"z", "a", "m"} {
		_, err := reg.Add(id, "", "")
		require.NoError(t, err)
	}
	ids := reg.IDs()
	assert.Equal(t, []string{"z", "a", "m"}, ids)

	ids[0] = "changed"
	assert.Equal(t, "z", reg.IDs()[0])
}

func TestRegistryRestoreCarriesDisplays(t *testing.T) {
	old := NewRegistry()
	for _, id := range []string{"a", "b"} {
		_, err := old.Add(id, "", "")
		require.NoError(t, err)
	}
	code, _ := old.Code("a")
	code.Display = DisplayBlock

	fresh := NewRegistry()
	for _, id := range []string{"a", "c"} {
		_, err := fresh.Add(id, "", "")
		require.NoError(t, err)
	}
	fresh.Restore(old.Displays())

	a, _ := fresh.Code("a")
	aBtn, _ := fresh.CopyButton("a")
	c, _ := fresh.Code("c")
	assert.Equal(t, DisplayBlock, a.Display)
	assert.Equal(t, DisplayBlock, aBtn.Display)
	assert.Equal(t, DisplayUnset, c.Display)
}

func TestDisplayShown(t *testing.T) {
	assert.False(t, DisplayUnset.Shown())
	assert.False(t, DisplayNone.Shown())
	assert.True(t, DisplayBlock.Shown())
}
