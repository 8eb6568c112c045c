package reconcile

import (
	"regexp"
	"strings"

	"github.com/Junheng-Zheng/Junbot/internal/domain"
)

// 匹配 "Added Psych Quiz for 3/14/26." / "Added task Psych Quiz for DUE TMR." / "Ok, added Psych Quiz due 3/14/26."
var addedPattern = regexp.MustCompile(`(?i)added\s+(?:task\s+)?(.+?)\s+(?:for|due)\s+(DUE TODAY|DUE TMR|\d{1,2}/\d{1,2}/\d{2})`)

// AddedPattern 模型只用文字描述了新增任务、没有调用工具时的兜底
// 只恢复新增，不从文字中恢复完成或删除
type AddedPattern struct{}

func (AddedPattern) Recover(replyText string) (domain.Mutation, bool) {
	m := addedPattern.FindStringSubmatch(replyText)
	if m == nil {
		return nil, false
	}
	title := strings.TrimSpace(m[1])
	due := strings.ToUpper(strings.TrimSpace(m[2]))
	if title == "" || due == "" {
		return nil, false
	}
	return domain.AddTask{Title: title, DueLabel: due}, true
}
