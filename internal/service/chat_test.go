package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Junheng-Zheng/Junbot/internal/domain"
	"github.com/Junheng-Zheng/Junbot/internal/eventbus"
	"github.com/Junheng-Zheng/Junbot/internal/service/assistant"
	"github.com/Junheng-Zheng/Junbot/internal/service/reconcile"
	"github.com/Junheng-Zheng/Junbot/internal/service/state"
	"github.com/Junheng-Zheng/Junbot/internal/service/tasks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
	// failSet 返回非 nil 时该次写入失败
	failSet func(key, value string) error
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string]string)}
}

func (m *memoryKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memoryKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		if err := m.failSet(key, value); err != nil {
			return err
		}
	}
	m.data[key] = value
	return nil
}

func (m *memoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type fakeGateway struct {
	reply      *assistant.Reply
	err        error
	transcript []domain.Message
	tasks      []domain.Task
	block      chan struct{}
	entered    chan struct{}
	deadline   bool
}

func (f *fakeGateway) Converse(ctx context.Context, transcript []domain.Message, tasks []domain.Task) (*assistant.Reply, error) {
	f.transcript = append([]domain.Message(nil), transcript...)
	f.tasks = append([]domain.Task(nil), tasks...)
	_, f.deadline = ctx.Deadline()
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func newTestService(gw *fakeGateway, turnBus *eventbus.TurnEventBus) (*ChatService, *state.Store) {
	store := state.NewStore(newMemoryKV())
	svc := NewChatService(gw, reconcile.New(), tasks.NewMutator(nil), store, turnBus, time.Minute)
	return svc, store
}

func addInvocation(title, due string) domain.ToolInvocation {
	input, _ := json.Marshal(map[string]string{"title": title, "dueLabel": due})
	return domain.ToolInvocation{Name: domain.ToolAddTask, Input: input}
}

func TestChatStateless(t *testing.T) {
	gw := &fakeGateway{reply: &assistant.Reply{
		Text:        "Added Psych Quiz.",
		Invocations: []domain.ToolInvocation{addInvocation("Psych Quiz", "DUE TMR")},
	}}
	svc, store := newTestService(gw, nil)

	res, err := svc.Chat(context.Background(), ChatRequest{
		Messages: []domain.Message{{Role: "user", Text: "add psych quiz tmr"}},
		Tasks:    []domain.Task{{ID: 1, Title: "Gym", DueLabel: "DUE TODAY"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Added Psych Quiz.", res.Message)
	assert.Equal(t, []domain.Action{{Type: domain.ToolAddTask, Title: "Psych Quiz", DueLabel: "DUE TMR"}}, res.Actions)
	assert.True(t, gw.deadline, "timeout is applied to the inference call")

	stored, err := store.Tasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored, "stateless chat must not touch the store")
}

func TestChatDefaultsReplyText(t *testing.T) {
	gw := &fakeGateway{reply: &assistant.Reply{}}
	svc, _ := newTestService(gw, nil)

	res, err := svc.Chat(context.Background(), ChatRequest{Messages: []domain.Message{{Role: "user", Text: "hi"}}})
	require.NoError(t, err)
	assert.Equal(t, "Done.", res.Message)
	assert.NotNil(t, res.Actions)
	assert.Empty(t, res.Actions)
}

func TestChatPassesErrorsThrough(t *testing.T) {
	gw := &fakeGateway{err: &domain.UpstreamError{StatusCode: 429, Message: "slow down"}}
	svc, _ := newTestService(gw, nil)

	_, err := svc.Chat(context.Background(), ChatRequest{Messages: []domain.Message{{Role: "user", Text: "hi"}}})
	assert.Equal(t, 429, domain.StatusOf(err))
}

func TestSendTurnAppliesAndPersists(t *testing.T) {
	gw := &fakeGateway{reply: &assistant.Reply{
		Text: "Got it.",
		Invocations: []domain.ToolInvocation{
			addInvocation("Quiz", "DUE TMR"),
			{Name: domain.ToolCompleteTask, Input: json.RawMessage(`{"taskId":1}`)},
		},
	}}
	turnBus := eventbus.NewTurnEventBus()
	var events []eventbus.TurnEvent
	turnBus.Subscribe(eventbus.TurnEventCompleted, func(ctx context.Context, e eventbus.TurnEvent) error {
		events = append(events, e)
		return nil
	})
	svc, store := newTestService(gw, turnBus)
	ctx := context.Background()
	require.NoError(t, store.SaveTasks(ctx, []domain.Task{{ID: 1, Title: "Gym", DueLabel: "DUE TODAY"}}))

	res, err := svc.SendTurn(ctx, "  add quiz tmr, and I went to the gym  ")
	require.NoError(t, err)

	assert.Equal(t, "Got it.", res.Message)
	assert.Equal(t, []domain.Task{{ID: 2, Title: "Quiz", DueLabel: "DUE TMR"}}, res.Tasks)
	assert.Len(t, res.Actions, 2)

	assert.Equal(t, []domain.Message{{Role: "user", Text: "add quiz tmr, and I went to the gym"}}, gw.transcript)
	assert.Equal(t, []domain.Task{{ID: 1, Title: "Gym", DueLabel: "DUE TODAY"}}, gw.tasks)

	stored, _ := store.Tasks(ctx)
	assert.Equal(t, res.Tasks, stored)
	messages, _ := store.Messages(ctx)
	assert.Equal(t, []domain.Message{
		{Role: "user", Text: "add quiz tmr, and I went to the gym"},
		{Role: "assistant", Text: "Got it."},
	}, messages)

	require.Len(t, events, 1)
	assert.Equal(t, 2, events[0].Mutations)
}

func TestSendTurnFailureRetractsUserMessage(t *testing.T) {
	gw := &fakeGateway{err: &domain.UpstreamError{StatusCode: 500, Message: "overloaded"}}
	turnBus := eventbus.NewTurnEventBus()
	failed := 0
	turnBus.Subscribe(eventbus.TurnEventFailed, func(ctx context.Context, e eventbus.TurnEvent) error {
		failed++
		return nil
	})
	svc, store := newTestService(gw, turnBus)
	ctx := context.Background()
	prior := []domain.Message{{Role: "user", Text: "hi"}, {Role: "assistant", Text: "hello"}}
	priorTasks := []domain.Task{{ID: 3, Title: "Gym", DueLabel: "DUE TODAY"}}
	require.NoError(t, store.SaveMessages(ctx, prior))
	require.NoError(t, store.SaveTasks(ctx, priorTasks))

	_, err := svc.SendTurn(ctx, "add quiz")
	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)

	messages, _ := store.Messages(ctx)
	assert.Equal(t, prior, messages)
	stored, _ := store.Tasks(ctx)
	assert.Equal(t, priorTasks, stored)
	assert.Equal(t, 1, failed)
}

func TestSendTurnTaskWriteFailureRollsBack(t *testing.T) {
	gw := &fakeGateway{reply: &assistant.Reply{
		Text:        "Added Quiz.",
		Invocations: []domain.ToolInvocation{addInvocation("Quiz", "DUE TMR")},
	}}
	kv := newMemoryKV()
	store := state.NewStore(kv)
	turnBus := eventbus.NewTurnEventBus()
	failed := 0
	turnBus.Subscribe(eventbus.TurnEventFailed, func(ctx context.Context, e eventbus.TurnEvent) error {
		failed++
		return nil
	})
	svc := NewChatService(gw, reconcile.New(), tasks.NewMutator(nil), store, turnBus, time.Minute)
	ctx := context.Background()
	prior := []domain.Message{{Role: "user", Text: "hi"}, {Role: "assistant", Text: "hello"}}
	priorTasks := []domain.Task{{ID: 3, Title: "Gym", DueLabel: "DUE TODAY"}}
	require.NoError(t, store.SaveMessages(ctx, prior))
	require.NoError(t, store.SaveTasks(ctx, priorTasks))

	diskFull := errors.New("disk full")
	kv.failSet = func(key, value string) error {
		if key == state.KeyTasks {
			return diskFull
		}
		return nil
	}

	_, err := svc.SendTurn(ctx, "add quiz tmr")
	require.ErrorIs(t, err, diskFull)

	messages, _ := store.Messages(ctx)
	assert.Equal(t, prior, messages, "user message is retracted")
	stored, _ := store.Tasks(ctx)
	assert.Equal(t, priorTasks, stored)
	assert.Equal(t, 1, failed)
}

func TestSendTurnTranscriptWriteFailureRestoresTasks(t *testing.T) {
	gw := &fakeGateway{reply: &assistant.Reply{
		Text:        "Added Quiz.",
		Invocations: []domain.ToolInvocation{addInvocation("Quiz", "DUE TMR")},
	}}
	kv := newMemoryKV()
	store := state.NewStore(kv)
	svc := NewChatService(gw, reconcile.New(), tasks.NewMutator(nil), store, nil, time.Minute)
	ctx := context.Background()
	priorTasks := []domain.Task{{ID: 3, Title: "Gym", DueLabel: "DUE TODAY"}}
	require.NoError(t, store.SaveTasks(ctx, priorTasks))

	diskFull := errors.New("disk full")
	// 只让带助手回复的那次对话记录写入失败
	kv.failSet = func(key, value string) error {
		if key == state.KeyMessages && strings.Contains(value, domain.RoleAssistant) {
			return diskFull
		}
		return nil
	}

	_, err := svc.SendTurn(ctx, "add quiz tmr")
	require.ErrorIs(t, err, diskFull)

	stored, _ := store.Tasks(ctx)
	assert.Equal(t, priorTasks, stored, "tasks are restored when the transcript cannot be saved")
	messages, _ := store.Messages(ctx)
	assert.Empty(t, messages)
}

func TestSendTurnEmptyText(t *testing.T) {
	gw := &fakeGateway{}
	svc, _ := newTestService(gw, nil)

	_, err := svc.SendTurn(context.Background(), "   ")
	var valErr *domain.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Nil(t, gw.transcript, "no inference call for invalid input")
}

func TestSendTurnRejectsConcurrentTurn(t *testing.T) {
	gw := &fakeGateway{
		reply:   &assistant.Reply{Text: "ok"},
		block:   make(chan struct{}),
		entered: make(chan struct{}),
	}
	svc, _ := newTestService(gw, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.SendTurn(context.Background(), "first")
		done <- err
	}()
	<-gw.entered

	_, err := svc.SendTurn(context.Background(), "second")
	assert.ErrorIs(t, err, domain.ErrTurnInProgress)
	_, err = svc.AddTask(context.Background(), "Gym", "DUE TODAY")
	assert.ErrorIs(t, err, domain.ErrTurnInProgress)

	close(gw.block)
	require.NoError(t, <-done)
}

func TestAddAndCompleteTask(t *testing.T) {
	svc, store := newTestService(&fakeGateway{}, nil)
	ctx := context.Background()

	created, err := svc.AddTask(ctx, " Gym ", "DUE TODAY")
	require.NoError(t, err)
	assert.Equal(t, domain.Task{ID: 1, Title: "Gym", DueLabel: "DUE TODAY"}, *created)

	created, err = svc.AddTask(ctx, "Essay", "3/14/26")
	require.NoError(t, err)
	assert.Equal(t, 2, created.ID)

	remaining, err := svc.CompleteTask(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []domain.Task{{ID: 2, Title: "Essay", DueLabel: "3/14/26"}}, remaining)

	remaining, err = svc.CompleteTask(ctx, 1)
	require.NoError(t, err, "completing twice is idempotent")
	assert.Len(t, remaining, 1)

	stored, _ := store.Tasks(ctx)
	assert.Equal(t, remaining, stored)
}

func TestAddTaskValidation(t *testing.T) {
	svc, _ := newTestService(&fakeGateway{}, nil)
	ctx := context.Background()

	cases := []struct{ title, due string }{
		{"", "DUE TODAY"},
		{"Gym", "tomorrow"},
		{"Gym", "13/40/2026"},
		{"Gym", "0/1/26"},
	}
	for _, tc := range cases {
		_, err := svc.AddTask(ctx, tc.title, tc.due)
		var valErr *domain.ValidationError
		assert.ErrorAs(t, err, &valErr, "title=%q due=%q", tc.title, tc.due)
	}
}

func TestClearMessages(t *testing.T) {
	turnBus := eventbus.NewTurnEventBus()
	cleared := false
	turnBus.Subscribe(eventbus.TurnEventCleared, func(ctx context.Context, e eventbus.TurnEvent) error {
		cleared = true
		return errors.New("subscriber failures are only logged")
	})
	svc, store := newTestService(&fakeGateway{}, turnBus)
	ctx := context.Background()
	require.NoError(t, store.SaveMessages(ctx, []domain.Message{{Role: "user", Text: "hi"}}))
	require.NoError(t, store.SaveTasks(ctx, []domain.Task{{ID: 1, Title: "Gym", DueLabel: "DUE TODAY"}}))

	require.NoError(t, svc.ClearMessages(ctx))

	messages, err := svc.ListMessages(ctx)
	require.NoError(t, err)
	assert.Empty(t, messages)
	tasksLeft, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasksLeft, 1)
	assert.True(t, cleared)
}
