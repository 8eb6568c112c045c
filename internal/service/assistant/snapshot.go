package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/Junheng-Zheng/Junbot/internal/domain"
)

// SnapshotVersion 上下文快照格式版本，措辞或结构变化时递增
const SnapshotVersion = 1

const (
	emptyTaskStatement = "Jun's current task list: EMPTY. He has NO tasks. For this reply say he has nothing due; ignore any tasks mentioned in earlier messages."
	taskListHeader     = "Jun's current task list (use ONLY this list for this reply):"
	emptyTurnPrefix    = "[Current task list for this turn: EMPTY - no tasks.]"
)

// Snapshot 每轮对话重新生成的任务上下文，模型唯一可信的任务来源
type Snapshot struct {
	Version  int
	Now      time.Time
	Tasks    []domain.Task
	DateLine string
	TaskLine string
}

// NewSnapshot 根据当前任务和时间构建快照，纯函数
func NewSnapshot(tasks []domain.Task, now time.Time) Snapshot {
	copied := make([]domain.Task, len(tasks))
	copy(copied, tasks)
	return Snapshot{
		Version:  SnapshotVersion,
		Now:      now,
		Tasks:    copied,
		DateLine: dateStatement(now),
		TaskLine: taskStatement(copied),
	}
}

// Empty 是否没有任务
func (s Snapshot) Empty() bool {
	return len(s.Tasks) == 0
}

// SystemBlock 注入系统提示词的上下文块
func (s Snapshot) SystemBlock() string {
	return s.DateLine + "\n" + s.TaskLine
}

// TurnPrefix 附加在最新一条用户消息前的任务列表
func (s Snapshot) TurnPrefix() string {
	if s.Empty() {
		return emptyTurnPrefix
	}
	return "[Current task list for this turn: " + s.TaskLine + "]"
}

// ShortDate 以 m/d/yy 形式输出日期，不补零
func ShortDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%02d", int(t.Month()), t.Day(), t.Year()%100)
}

func dateStatement(now time.Time) string {
	return fmt.Sprintf(
		`Current date: %s, %d/%d/%d (today as m/d/yy: %s). Use this to compute relative dates like "next Sunday" or "next Friday".`,
		now.Weekday(), int(now.Month()), now.Day(), now.Year(), ShortDate(now),
	)
}

func taskStatement(tasks []domain.Task) string {
	if len(tasks) == 0 {
		return emptyTaskStatement
	}
	var sb strings.Builder
	sb.WriteString(taskListHeader)
	for _, t := range tasks {
		fmt.Fprintf(&sb, "\n- [id: %d] %s (due: %s)", t.ID, t.Title, t.DueLabel)
	}
	return sb.String()
}
