package eventbus

import "github.com/Junheng-Zheng/Junbot/internal/domain"

type TaskEventType string

const (
	TaskEventAdded     TaskEventType = "TaskAdded"
	TaskEventCompleted TaskEventType = "TaskCompleted"
)

// TaskEvent 任务列表发生变化，Source 区分来源（assistant / manual）
type TaskEvent struct {
	Type   TaskEventType
	Task   domain.Task
	Source string
}

type TaskEventHandler = Handler[TaskEvent]
type TaskEventBus = Bus[TaskEventType, TaskEvent]

func NewTaskEventBus() *TaskEventBus {
	return NewBus(func(e TaskEvent) TaskEventType { return e.Type })
}
