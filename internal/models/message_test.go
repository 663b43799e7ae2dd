package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConversationKey_OrderIndependent(t *testing.T) {
	req := require.New(t)

	req.Equal(ConversationKey("alice", "bob"), ConversationKey("bob", "alice"))
	req.Equal("alice:bob", ConversationKey("bob", "alice"))
}

func TestConversationKey_DistinctPairs(t *testing.T) {
	req := require.New(t)

	req.NotEqual(ConversationKey("alice", "bob"), ConversationKey("alice", "carol"))
}

func TestConversationKey_SelfConversation(t *testing.T) {
	require.Equal(t, "alice:alice", ConversationKey("alice", "alice"))
}
