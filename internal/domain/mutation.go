package domain

import "encoding/json"

const (
	ToolAddTask      = "add_task"
	ToolCompleteTask = "complete_task"
	ToolDeleteTask   = "delete_task"
)

// ToolInvocation 模型返回的结构化工具调用
// Input 保留原始 JSON，由 reconcile 自行校验字段类型
type ToolInvocation struct {
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// Mutation 归一化后的任务变更，只有 AddTask 与 CompleteTask 两种
type Mutation interface {
	isMutation()
	// Action 转换为对外协议中的 action 结构
	Action() Action
}

type AddTask struct {
	Title    string
	DueLabel string
}

type CompleteTask struct {
	TaskID int
}

func (AddTask) isMutation()      {}
func (CompleteTask) isMutation() {}

func (m AddTask) Action() Action {
	return Action{Type: ToolAddTask, Title: m.Title, DueLabel: m.DueLabel}
}

func (m CompleteTask) Action() Action {
	id := m.TaskID
	return Action{Type: ToolCompleteTask, TaskID: &id}
}

// Action 对外协议中的任务动作
// {type: "add_task", title, dueLabel} 或 {type: "complete_task", taskId}
type Action struct {
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	DueLabel string `json:"dueLabel,omitempty"`
	TaskID   *int   `json:"taskId,omitempty"`
}

// Actions 批量转换
func Actions(mutations []Mutation) []Action {
	actions := make([]Action, 0, len(mutations))
	for _, m := range mutations {
		actions = append(actions, m.Action())
	}
	return actions
}
