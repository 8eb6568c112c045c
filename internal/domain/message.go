package domain

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message 对话记录中的一条消息，只追加不修改
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// NormalizeRole 非 assistant 的角色一律视为 user
func NormalizeRole(role string) string {
	if role == RoleAssistant {
		return RoleAssistant
	}
	return RoleUser
}

// RetractLastUserMessage 撤回最近一条用户消息，返回新切片
// 请求失败时作为补偿动作调用
func RetractLastUserMessage(messages []Message) []Message {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			out := make([]Message, 0, len(messages)-1)
			out = append(out, messages[:i]...)
			return append(out, messages[i+1:]...)
		}
	}
	return messages
}
