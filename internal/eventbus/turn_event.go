package eventbus

type TurnEventType string

const (
	TurnEventCompleted TurnEventType = "TurnCompleted"
	TurnEventFailed    TurnEventType = "TurnFailed"
	TurnEventCleared   TurnEventType = "TranscriptCleared"
)

type TurnEvent struct {
	Type      TurnEventType
	UserText  string
	ReplyText string
	Mutations int
	Err       error
}

type TurnEventHandler = Handler[TurnEvent]
type TurnEventBus = Bus[TurnEventType, TurnEvent]

func NewTurnEventBus() *TurnEventBus {
	return NewBus(func(e TurnEvent) TurnEventType { return e.Type })
}
