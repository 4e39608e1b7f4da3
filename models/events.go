package models

// EventType names the gateway event a payload was built from
type EventType string

const (
	EventTypeMessageCreate EventType = "messageCreate"
	EventTypeMessageUpdate EventType = "messageUpdate"
	EventTypeMessageDelete EventType = "messageDelete"
)

func (e EventType) String() string {
	return string(e)
}
