package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"marketplace_chat/internal/domain"
)

func TestStoredKind(t *testing.T) {
	kind, err := storedKind("group_room_3", "GROUP")
	require.NoError(t, err)
	require.Equal(t, domain.RoomKindGroup, kind)

	// ids outside the derived families keep their stored kind
	kind, err = storedKind("legacy", "ADMIN")
	require.NoError(t, err)
	require.Equal(t, domain.RoomKindAdmin, kind)

	_, err = storedKind("group_room_3", "LOBBY")
	require.Error(t, err)

	_, err = storedKind("admin_Mina", "PERSONAL")
	require.Error(t, err)
}
