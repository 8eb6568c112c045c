package reconcile

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Junheng-Zheng/Junbot/internal/domain"
	"github.com/Junheng-Zheng/Junbot/internal/utils"
	"k8s.io/klog/v2"
)

// Recoverer 在没有结构化调用时从回复文本中恢复变更
type Recoverer interface {
	Recover(replyText string) (domain.Mutation, bool)
}

// Reconciler 将模型的工具调用归一化为任务变更
type Reconciler struct {
	fallback Recoverer
}

type Option func(*Reconciler)

// WithRecoverer 替换文本兜底策略，传 nil 关闭兜底
func WithRecoverer(r Recoverer) Option {
	return func(rc *Reconciler) {
		rc.fallback = r
	}
}

// New 创建 Reconciler，默认启用 AddedPattern 兜底
func New(opts ...Option) *Reconciler {
	rc := &Reconciler{fallback: AddedPattern{}}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Reconcile 按调用出现顺序生成变更
// 结构化路径一个变更都没有且回复文本非空时，才尝试文本兜底，最多一个变更
func (rc *Reconciler) Reconcile(replyText string, invocations []domain.ToolInvocation, tasks []domain.Task) []domain.Mutation {
	mutations := make([]domain.Mutation, 0, len(invocations))
	for _, inv := range invocations {
		m, ok := rc.fromInvocation(inv, tasks)
		if !ok {
			continue
		}
		mutations = append(mutations, m)
	}

	if len(mutations) == 0 && replyText != "" && rc.fallback != nil {
		if m, ok := rc.fallback.Recover(replyText); ok {
			klog.V(6).Infof("[Reconciler] 文本兜底生成变更: %s", utils.ToJSON(m.Action()))
			return []domain.Mutation{m}
		}
	}
	return mutations
}

func (rc *Reconciler) fromInvocation(inv domain.ToolInvocation, tasks []domain.Task) (domain.Mutation, bool) {
	var input map[string]json.RawMessage
	if len(inv.Input) == 0 || json.Unmarshal(inv.Input, &input) != nil || input == nil {
		dropped(inv, "input is not an object")
		return nil, false
	}

	switch inv.Name {
	case domain.ToolAddTask:
		title, ok1 := stringField(input, "title")
		due, ok2 := stringField(input, "dueLabel")
		if !ok1 || !ok2 {
			dropped(inv, "title and dueLabel must be strings")
			return nil, false
		}
		return domain.AddTask{Title: strings.TrimSpace(title), DueLabel: strings.TrimSpace(due)}, true

	case domain.ToolCompleteTask:
		id, ok := taskIDField(input, "taskId")
		if !ok {
			dropped(inv, "taskId must be an integer")
			return nil, false
		}
		return domain.CompleteTask{TaskID: id}, true

	case domain.ToolDeleteTask:
		title, ok1 := stringField(input, "title")
		due, ok2 := stringField(input, "dueLabel")
		if !ok1 || !ok2 {
			dropped(inv, "title and dueLabel must be strings")
			return nil, false
		}
		match, found := MatchTask(tasks, title, due)
		if !found {
			klog.V(6).Infof("[Reconciler] delete_task 未匹配到任务: title=%q, dueLabel=%q", title, due)
			return nil, false
		}
		return domain.CompleteTask{TaskID: match.ID}, true
	}

	dropped(inv, "unknown tool")
	return nil, false
}

// MatchTask 按标题模糊匹配、截止标签精确匹配，返回列表中的第一个命中
// 标题互相包含时存在歧义，只取第一个
func MatchTask(tasks []domain.Task, title, dueLabel string) (domain.Task, bool) {
	want := domain.NormalizeTitle(title)
	wantDue := strings.TrimSpace(dueLabel)
	for _, t := range tasks {
		have := domain.NormalizeTitle(t.Title)
		titleMatch := have == want || strings.Contains(have, want) || strings.Contains(want, have)
		if titleMatch && strings.TrimSpace(t.DueLabel) == wantDue {
			return t, true
		}
	}
	return domain.Task{}, false
}

// decimalID 只允许十进制写法，排除 0x10、1_0、Inf 这类 ParseFloat 也能接受的拼写
var decimalID = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// rawField 取出字段原始值，缺失或为 null 时视为不存在
func rawField(input map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	raw, ok := input[key]
	if !ok {
		return nil, false
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, false
	}
	return trimmed, true
}

func stringField(input map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := rawField(input, key)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// taskIDField 接受数字或非空的数字字符串，必须是整数。
// 字符串形式只接受十进制写法。
func taskIDField(input map[string]json.RawMessage, key string) (int, bool) {
	raw, ok := rawField(input, key)
	if !ok {
		return 0, false
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
		if !decimalID.MatchString(s) {
			return 0, false
		}
		n, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
	}

	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

func dropped(inv domain.ToolInvocation, reason string) {
	klog.V(6).Infof("[Reconciler] 丢弃工具调用: name=%s, reason=%s, input=%s", inv.Name, reason, string(inv.Input))
}
