package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Junheng-Zheng/Junbot/internal/domain"
	"github.com/Junheng-Zheng/Junbot/internal/eventbus"
	"github.com/Junheng-Zheng/Junbot/internal/service/assistant"
	"github.com/Junheng-Zheng/Junbot/internal/service/state"
	"github.com/Junheng-Zheng/Junbot/internal/service/tasks"
	"k8s.io/klog/v2"
)

// DefaultReplyText 模型没有返回文字时的回复
const DefaultReplyText = "Done."

type conversation interface {
	Converse(ctx context.Context, transcript []domain.Message, tasks []domain.Task) (*assistant.Reply, error)
}

type reconciler interface {
	Reconcile(replyText string, invocations []domain.ToolInvocation, tasks []domain.Task) []domain.Mutation
}

// ChatRequest 无状态对话请求，由客户端携带完整的对话记录和任务列表
type ChatRequest struct {
	Messages []domain.Message `json:"messages"`
	Tasks    []domain.Task    `json:"tasks"`
}

// ChatResult 无状态对话结果，任务变更由客户端应用
type ChatResult struct {
	Message string          `json:"message"`
	Actions []domain.Action `json:"actions"`
}

// TurnResult 有状态对话结果，附带变更后的任务列表
type TurnResult struct {
	Message string          `json:"message"`
	Actions []domain.Action `json:"actions"`
	Tasks   []domain.Task   `json:"tasks"`
}

// ChatService 对话与任务卡片操作
type ChatService struct {
	gateway    conversation
	reconciler reconciler
	mutator    *tasks.Mutator
	store      *state.Store
	turnBus    *eventbus.TurnEventBus
	timeout    time.Duration

	// 同一进程内同时只允许一个写操作
	guard sync.Mutex
}

func NewChatService(gateway conversation, rc reconciler, mutator *tasks.Mutator, store *state.Store, turnBus *eventbus.TurnEventBus, timeout time.Duration) *ChatService {
	return &ChatService{
		gateway:    gateway,
		reconciler: rc,
		mutator:    mutator,
		store:      store,
		turnBus:    turnBus,
		timeout:    timeout,
	}
}

func (s *ChatService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Chat 无状态对话：推理并归一化工具调用，不读写服务端状态
func (s *ChatService) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	reply, err := s.gateway.Converse(ctx, req.Messages, req.Tasks)
	if err != nil {
		return nil, err
	}
	mutations := s.reconciler.Reconcile(reply.Text, reply.Invocations, req.Tasks)
	return &ChatResult{
		Message: replyText(reply.Text),
		Actions: domain.Actions(mutations),
	}, nil
}

// SendTurn 有状态对话
// 先落盘用户消息再推理，成功后先保存任务再保存对话记录
// 推理或任一写入失败时撤回该消息并恢复任务列表，不存在部分成功
func (s *ChatService) SendTurn(ctx context.Context, text string) (*TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &domain.ValidationError{Message: "Message text is required"}
	}
	if !s.guard.TryLock() {
		return nil, domain.ErrTurnInProgress
	}
	defer s.guard.Unlock()

	current, err := s.store.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	messages, err := s.store.Messages(ctx)
	if err != nil {
		return nil, err
	}

	messages = append(messages, domain.Message{Role: domain.RoleUser, Text: text})
	if err := s.store.SaveMessages(ctx, messages); err != nil {
		return nil, err
	}

	callCtx, cancel := s.withTimeout(ctx)
	reply, err := s.gateway.Converse(callCtx, messages, current)
	cancel()
	if err != nil {
		return nil, s.rollback(ctx, text, messages, nil, err)
	}

	mutations := s.reconciler.Reconcile(reply.Text, reply.Invocations, current)
	updated := s.mutator.Apply(ctx, mutations, current)
	if err := s.store.SaveTasks(ctx, updated); err != nil {
		return nil, s.rollback(ctx, text, messages, nil, err)
	}

	message := replyText(reply.Text)
	transcript := append(messages[:len(messages):len(messages)], domain.Message{Role: domain.RoleAssistant, Text: message})
	if err := s.store.SaveMessages(ctx, transcript); err != nil {
		return nil, s.rollback(ctx, text, messages, current, err)
	}

	klog.V(6).Infof("[ChatService] 对话完成: mutations=%d, tasks=%d", len(mutations), len(updated))
	s.publishTurn(ctx, eventbus.TurnEvent{
		Type:      eventbus.TurnEventCompleted,
		UserText:  text,
		ReplyText: message,
		Mutations: len(mutations),
	})
	return &TurnResult{
		Message: message,
		Actions: domain.Actions(mutations),
		Tasks:   updated,
	}, nil
}

// rollback 撤销失败轮次已落盘的部分：撤回用户消息，restore 非 nil 时同时恢复任务列表
// 回滚本身失败只记录日志，返回原始错误
func (s *ChatService) rollback(ctx context.Context, text string, messages []domain.Message, restore []domain.Task, cause error) error {
	if restore != nil {
		if err := s.store.SaveTasks(ctx, restore); err != nil {
			klog.Errorf("[ChatService] 恢复任务列表失败: %v", err)
		}
	}
	if err := s.store.SaveMessages(ctx, domain.RetractLastUserMessage(messages)); err != nil {
		klog.Errorf("[ChatService] 撤回用户消息失败: %v", err)
	}
	s.publishTurn(ctx, eventbus.TurnEvent{Type: eventbus.TurnEventFailed, UserText: text, Err: cause})
	return cause
}

// AddTask 手动新增任务
func (s *ChatService) AddTask(ctx context.Context, title, dueLabel string) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	dueLabel = strings.TrimSpace(dueLabel)
	if title == "" {
		return nil, &domain.ValidationError{Message: "title is required"}
	}
	if !domain.IsValidDueLabel(dueLabel) {
		return nil, &domain.ValidationError{Message: "dueLabel must be DUE TODAY, DUE TMR or m/d/yy"}
	}
	if !s.guard.TryLock() {
		return nil, domain.ErrTurnInProgress
	}
	defer s.guard.Unlock()

	current, err := s.store.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	updated := s.mutator.WithSource(tasks.SourceManual).Apply(ctx, []domain.Mutation{
		domain.AddTask{Title: title, DueLabel: dueLabel},
	}, current)
	if err := s.store.SaveTasks(ctx, updated); err != nil {
		return nil, err
	}
	created := updated[len(updated)-1]
	return &created, nil
}

// CompleteTask 手动完成任务，ID 不存在时不报错
func (s *ChatService) CompleteTask(ctx context.Context, id int) ([]domain.Task, error) {
	if !s.guard.TryLock() {
		return nil, domain.ErrTurnInProgress
	}
	defer s.guard.Unlock()

	current, err := s.store.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	updated := s.mutator.WithSource(tasks.SourceManual).Apply(ctx, []domain.Mutation{
		domain.CompleteTask{TaskID: id},
	}, current)
	if err := s.store.SaveTasks(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// ListTasks 当前任务列表
func (s *ChatService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return s.store.Tasks(ctx)
}

// ListMessages 当前对话记录
func (s *ChatService) ListMessages(ctx context.Context) ([]domain.Message, error) {
	return s.store.Messages(ctx)
}

// ClearMessages 清空对话记录，任务列表不受影响
func (s *ChatService) ClearMessages(ctx context.Context) error {
	if !s.guard.TryLock() {
		return domain.ErrTurnInProgress
	}
	defer s.guard.Unlock()

	if err := s.store.SaveMessages(ctx, nil); err != nil {
		return err
	}
	s.publishTurn(ctx, eventbus.TurnEvent{Type: eventbus.TurnEventCleared})
	return nil
}

func (s *ChatService) publishTurn(ctx context.Context, event eventbus.TurnEvent) {
	if err := s.turnBus.Publish(ctx, event); err != nil {
		klog.Warningf("[ChatService] 对话事件处理失败: type=%s, error=%v", event.Type, err)
	}
}

func replyText(text string) string {
	if text == "" {
		return DefaultReplyText
	}
	return text
}
