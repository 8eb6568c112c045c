package tasks

import (
	"context"

	"github.com/Junheng-Zheng/Junbot/internal/domain"
	"github.com/Junheng-Zheng/Junbot/internal/eventbus"
	"k8s.io/klog/v2"
)

// Mutator 把变更应用到任务列表
type Mutator struct {
	bus    *eventbus.TaskEventBus
	source string
}

// NewMutator 创建 Mutator，bus 可以为 nil
func NewMutator(bus *eventbus.TaskEventBus) *Mutator {
	return &Mutator{bus: bus, source: SourceAssistant}
}

const (
	SourceAssistant = "assistant"
	SourceManual    = "manual"
)

// WithSource 返回共享事件总线、但以指定来源发布事件的 Mutator
func (m *Mutator) WithSource(source string) *Mutator {
	return &Mutator{bus: m.bus, source: source}
}

// Apply 按顺序应用变更，返回新的任务列表，不修改入参
// 新增任务的 ID 每次重新计算为最大 ID + 1；完成不存在的 ID 时忽略
func (m *Mutator) Apply(ctx context.Context, mutations []domain.Mutation, store []domain.Task) []domain.Task {
	out := make([]domain.Task, len(store), len(store)+len(mutations))
	copy(out, store)

	for _, mutation := range mutations {
		switch mu := mutation.(type) {
		case domain.AddTask:
			task := domain.Task{
				ID:       domain.NextTaskID(out),
				Title:    mu.Title,
				DueLabel: mu.DueLabel,
			}
			out = append(out, task)
			m.publish(ctx, eventbus.TaskEventAdded, task)

		case domain.CompleteTask:
			task, ok := domain.FindTask(out, mu.TaskID)
			if !ok {
				klog.V(6).Infof("[Mutator] 完成任务时未找到 ID，忽略: taskId=%d", mu.TaskID)
				continue
			}
			out = remove(out, mu.TaskID)
			m.publish(ctx, eventbus.TaskEventCompleted, task)
		}
	}
	return out
}

func remove(tasks []domain.Task, id int) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func (m *Mutator) publish(ctx context.Context, eventType eventbus.TaskEventType, task domain.Task) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(ctx, eventbus.TaskEvent{Type: eventType, Task: task, Source: m.source}); err != nil {
		klog.Warningf("[Mutator] 任务事件处理失败: type=%s, taskId=%d, error=%v", eventType, task.ID, err)
	}
}
