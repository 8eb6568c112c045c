package subscriber

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Junheng-Zheng/Junbot/internal/eventbus"
	"k8s.io/klog/v2"
)

// Activity 一条最近活动
type Activity struct {
	At     time.Time `json:"at"`
	Kind   string    `json:"kind"`
	Detail string    `json:"detail"`
}

// ActivityLog 订阅任务与对话事件，保留最近的活动记录
type ActivityLog struct {
	mu      sync.Mutex
	entries []Activity
	limit   int
	now     func() time.Time
}

const defaultActivityLimit = 100

func NewActivityLog(limit int) *ActivityLog {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	return &ActivityLog{limit: limit, now: time.Now}
}

// Register 订阅任务事件
func (s *ActivityLog) Register(bus *eventbus.TaskEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.TaskEventAdded, s.handleTaskEvent)
	bus.Subscribe(eventbus.TaskEventCompleted, s.handleTaskEvent)
}

// RegisterTurns 订阅对话事件
func (s *ActivityLog) RegisterTurns(bus *eventbus.TurnEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.TurnEventCompleted, s.handleTurnEvent)
	bus.Subscribe(eventbus.TurnEventFailed, s.handleTurnEvent)
	bus.Subscribe(eventbus.TurnEventCleared, s.handleTurnEvent)
}

func (s *ActivityLog) handleTaskEvent(ctx context.Context, event eventbus.TaskEvent) error {
	detail := fmt.Sprintf("[%d] %s (%s) via %s", event.Task.ID, event.Task.Title, event.Task.DueLabel, event.Source)
	klog.V(6).Infof("任务事件: type=%s, %s", event.Type, detail)
	s.append(string(event.Type), detail)
	return nil
}

func (s *ActivityLog) handleTurnEvent(ctx context.Context, event eventbus.TurnEvent) error {
	var detail string
	switch event.Type {
	case eventbus.TurnEventCompleted:
		detail = fmt.Sprintf("%d action(s)", event.Mutations)
		klog.V(6).Infof("对话事件: type=%s, mutations=%d", event.Type, event.Mutations)
	case eventbus.TurnEventFailed:
		detail = fmt.Sprintf("%v", event.Err)
		klog.Errorf("对话失败: %v", event.Err)
	default:
		klog.V(6).Infof("对话事件: type=%s", event.Type)
	}
	s.append(string(event.Type), detail)
	return nil
}

func (s *ActivityLog) append(kind, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Activity{At: s.now(), Kind: kind, Detail: detail})
	if over := len(s.entries) - s.limit; over > 0 {
		s.entries = append([]Activity(nil), s.entries[over:]...)
	}
}

// Recent 按时间倒序返回最近 n 条，n <= 0 时返回全部
func (s *ActivityLog) Recent(n int) []Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Activity, 0, n)
	for i := len(s.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.entries[i])
	}
	return out
}
