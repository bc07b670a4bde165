package types

// Role identifies the author of a chat turn
type Role string

// Chat roles accepted by the chat protocol
const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Valid reports whether r is one of the supported chat roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// ChatTurn is one entry of a chat transcript. The caller keeps the transcript and
// resends it in full with every message.
type ChatTurn struct {
	Role    Role   `json:"role" validate:"required,oneof=user model"`
	Content string `json:"content"`
}
