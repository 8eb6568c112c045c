package domain

import (
	"regexp"
	"strings"
)

const (
	DueToday    = "DUE TODAY"
	DueTomorrow = "DUE TMR"
)

var dueDatePattern = regexp.MustCompile(`^[1-9]\d?/[1-9]\d?/\d{2}$`)

// Task 用户待办
// Title 约定最多三个词、每词六个字符，不做强制校验
type Task struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	DueLabel string `json:"dueLabel"`
}

// IsValidDueLabel 判断截止标签是否为 DUE TODAY / DUE TMR / m/d/yy 三种形态之一
func IsValidDueLabel(label string) bool {
	switch label {
	case DueToday, DueTomorrow:
		return true
	}
	return dueDatePattern.MatchString(label)
}

// NextTaskID 返回下一个可用 ID：最大 ID + 1，空列表时为 1
func NextTaskID(tasks []Task) int {
	maxID := 0
	for _, t := range tasks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}

// FindTask 按 ID 查找任务
func FindTask(tasks []Task, id int) (Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// NormalizeTitle 用于模糊匹配的标题形式
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
