package wizard

import "trendies_market_v1/internal/schema"

// EventType 向导事件类型
type EventType string

const (
	EventFieldChanged  EventType = "field_changed"
	EventStepChanged   EventType = "step_changed"
	EventErrorsChanged EventType = "errors_changed"
	EventSubmitting    EventType = "submitting"
	EventSubmitted     EventType = "submitted"
	EventFailed        EventType = "failed"
)

// Event 推送给订阅者的状态变化
type Event struct {
	Type      EventType          `json:"type"`
	Step      int                `json:"step"`
	Field     string             `json:"field,omitempty"`
	Errors    schema.FieldErrors `json:"errors,omitempty"`
	ListingID int64              `json:"listing_id,omitempty"`
	Redirect  string             `json:"redirect,omitempty"`
	Message   string             `json:"message,omitempty"`
}
