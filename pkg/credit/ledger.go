// Package credit maintains the primary and secondary contributor bookkeeping
// on a ticket as actions occur.
package credit

import "github.com/workpoint/ticketflow/pkg/models"

// Grant applies the single authorship rule shared by every action handler:
// the first actor at the workflow's first employee node becomes the primary
// credit, everyone else lands in the deduplicated secondary list.
func Grant(ticket *models.Ticket, actor models.Actor, atFirstNode bool) {
	if atFirstNode && ticket.PrimaryCredit == nil {
		ticket.PrimaryCredit = &models.CreditEntry{UserID: actor.UserID, Name: actor.Name}

		return
	}

	ticket.SecondaryCredits = AddSecondary(ticket.SecondaryCredits, actor.UserID, actor.Name)
}

// AddSecondary appends {userID, name} to the list unless the user is already
// present. Insertion order is preserved.
func AddSecondary(list []models.CreditEntry, userID, name string) []models.CreditEntry {
	for _, entry := range list {
		if entry.UserID == userID {
			return list
		}
	}

	return append(list, models.CreditEntry{UserID: userID, Name: name})
}

// RemoveSecondary drops the entry for userID, if present.
func RemoveSecondary(list []models.CreditEntry, userID string) []models.CreditEntry {
	filtered := make([]models.CreditEntry, 0, len(list))

	for _, entry := range list {
		if entry.UserID != userID {
			filtered = append(filtered, entry)
		}
	}

	return filtered
}
