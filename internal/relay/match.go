package relay

import "github.com/ziadkadry99/bedrock-relay/internal/backend"

// Reply is an assistant message that answers a submitted user message.
type Reply struct {
	MessageID string
	Text      string
}

// FindReply searches messages for the assistant reply whose parent is
// userMessageID. A candidate must have assistant role, must not be the
// system entry and must carry non-empty text.
//
// When several candidates exist (a regenerated answer, for instance) the
// one with the greatest CreateTime wins; equal or missing CreateTime keeps
// the earliest in snapshot order.
func FindReply(messages []backend.MessageRecord, userMessageID string) (Reply, bool) {
	var (
		best  *backend.MessageRecord
		found Reply
	)
	for i := range messages {
		msg := &messages[i]
		if msg.Role != backend.RoleAssistant || msg.ID == backend.SystemMessageID {
			continue
		}
		if msg.Parent != userMessageID {
			continue
		}
		text := msg.Text()
		if text == "" {
			continue
		}
		if best == nil || msg.CreateTime > best.CreateTime {
			best = msg
			found = Reply{MessageID: msg.ID, Text: text}
		}
	}
	return found, best != nil
}
