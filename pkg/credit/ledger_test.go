package credit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workpoint/ticketflow/pkg/models"
)

func TestGrant_FirstNodeSetsPrimaryOnce(t *testing.T) {
	ticket := &models.Ticket{}

	Grant(ticket, models.Actor{UserID: "alice", Name: "Alice"}, true)

	require.NotNil(t, ticket.PrimaryCredit)
	assert.Equal(t, "alice", ticket.PrimaryCredit.UserID)
	assert.Empty(t, ticket.SecondaryCredits)

	// A second first-node grant must not displace the primary holder.
	Grant(ticket, models.Actor{UserID: "bob", Name: "Bob"}, true)

	assert.Equal(t, "alice", ticket.PrimaryCredit.UserID)
	require.Len(t, ticket.SecondaryCredits, 1)
	assert.Equal(t, "bob", ticket.SecondaryCredits[0].UserID)
}

func TestGrant_DownstreamNodeIsSecondary(t *testing.T) {
	ticket := &models.Ticket{}

	Grant(ticket, models.Actor{UserID: "carol", Name: "Carol"}, false)

	assert.Nil(t, ticket.PrimaryCredit)
	require.Len(t, ticket.SecondaryCredits, 1)
	assert.Equal(t, "carol", ticket.SecondaryCredits[0].UserID)
}

func TestAddSecondary_Deduplicates(t *testing.T) {
	list := AddSecondary(nil, "dave", "Dave")
	list = AddSecondary(list, "erin", "Erin")
	list = AddSecondary(list, "dave", "Dave")

	require.Len(t, list, 2)
	assert.Equal(t, "dave", list[0].UserID)
	assert.Equal(t, "erin", list[1].UserID)
}

func TestRemoveSecondary(t *testing.T) {
	list := []models.CreditEntry{
		{UserID: "dave", Name: "Dave"},
		{UserID: "erin", Name: "Erin"},
	}

	list = RemoveSecondary(list, "dave")

	require.Len(t, list, 1)
	assert.Equal(t, "erin", list[0].UserID)

	list = RemoveSecondary(list, "missing")
	assert.Len(t, list, 1)
}
