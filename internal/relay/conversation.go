package relay

import (
	"strconv"

	"github.com/google/uuid"
)

// ConversationID is the backend conversation id for a platform user: the
// decimal user id. Every turn of the same user lands in the same backend
// conversation, including conversations started by earlier deployments.
func ConversationID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// newTurnID tags one chat turn in the logs.
func newTurnID() string {
	return uuid.NewString()
}
