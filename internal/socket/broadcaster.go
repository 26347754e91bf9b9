// internal/socket/broadcaster.go
package socket

// Broadcaster wraps the hub with domain-level push helpers so the service
// layer never deals with raw message types.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

// SendNotification pushes a stored notification to the account's devices
func (b *Broadcaster) SendNotification(accountID string, notification map[string]interface{}) {
	b.hub.SendToAccount(accountID, MessageNotification, notification)
}

// SendNotificationCount pushes updated unread counters
func (b *Broadcaster) SendNotificationCount(accountID string, total, unread int) {
	b.hub.SendToAccount(accountID, MessageNotificationCount, map[string]interface{}{
		"total":  total,
		"unread": unread,
	})
}

// BroadcastClaimCreated tells a team's room that a roster claim is waiting
func (b *Broadcaster) BroadcastClaimCreated(teamID string, claim map[string]interface{}) {
	b.hub.SendToRoom("team:"+teamID, MessageClaimCreated, claim, "")
}

// BroadcastClaimDecision tells the claimant the review outcome
func (b *Broadcaster) BroadcastClaimDecision(accountID string, approved bool, claim map[string]interface{}) {
	msgType := MessageClaimRejected
	if approved {
		msgType = MessageClaimApproved
	}
	b.hub.SendToAccount(accountID, msgType, claim)
}

// BroadcastMemberJoined tells a team's room about a new membership
func (b *Broadcaster) BroadcastMemberJoined(teamID string, member map[string]interface{}) {
	b.hub.SendToRoom("team:"+teamID, MessageTeamMemberJoined, member, "")
}

// BroadcastRosterUpdated tells a team's room the roster changed
func (b *Broadcaster) BroadcastRosterUpdated(teamID string, entry map[string]interface{}, excludeAccountID string) {
	b.hub.SendToRoom("team:"+teamID, MessageRosterUpdated, entry, excludeAccountID)
}

// BroadcastJoinCodeRotated tells managers the join code changed
func (b *Broadcaster) BroadcastJoinCodeRotated(teamID string) {
	b.hub.SendToRoom("team:"+teamID, MessageJoinCodeRotated, map[string]interface{}{
		"teamId": teamID,
	}, "")
}
