package worldsync_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GreenHouse007/world-builder/internal/domain"
	"github.com/GreenHouse007/world-builder/internal/worldsync"
)

func TestDecodeChangesFiltersUnknownTypes(t *testing.T) {
	wire := `[
		{"type":"insertPage","worldId":"w1","page":{"id":"p1","title":"Races"}},
		{"type":"formatHardDrive","worldId":"w1"},
		{"type":"removePage","worldId":"w1","pageId":"p1"}
	]`
	changes, err := worldsync.DecodeChanges([]byte(wire))
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, domain.ChangeInsertPage, changes[0].Type)
	assert.Equal(t, domain.ChangeRemovePage, changes[1].Type)
}

func TestDecodeChangesMalformed(t *testing.T) {
	_, err := worldsync.DecodeChanges([]byte(`{"not":"a list"}`))
	assert.Error(t, err)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := []domain.WorldChange{
		{Type: domain.ChangeMovePage, WorldID: "w1", PageID: "a", TargetID: "b", Position: domain.MoveAfter},
	}
	data, err := worldsync.EncodeChanges(in)
	require.NoError(t, err)
	out, err := worldsync.DecodeChanges(data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
