package models

import "time"

type EventKind string

const (
	EventTestScheduled EventKind = "TEST_SCHEDULED"
	EventTestAssigned  EventKind = "TEST_ASSIGNED"
	EventTestStarted   EventKind = "TEST_STARTED"
	EventTestEnded     EventKind = "TEST_ENDED"
)

// Channel is the pub/sub channel suffix a kind is published on.
func (k EventKind) Channel() string {
	switch k {
	case EventTestScheduled:
		return "test.scheduled"
	case EventTestAssigned:
		return "test.assigned"
	case EventTestStarted:
		return "test.started"
	case EventTestEnded:
		return "test.ended"
	default:
		return "test.unknown"
	}
}

type TestScheduledEvent struct {
	EventType   EventKind  `json:"eventType"`
	TestID      string     `json:"testId"`
	TestName    string     `json:"testName"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	Duration    int        `json:"duration"`
}

type TestAssignedEvent struct {
	EventType       EventKind       `json:"eventType"`
	TestID          string          `json:"testId"`
	TestName        string          `json:"testName"`
	StartTime       *time.Time      `json:"startTime"`
	EndTime         *time.Time      `json:"endTime"`
	DurationMinutes int             `json:"durationMinutes"`
	TestLink        string          `json:"testLink"`
	Candidates      []CandidateInfo `json:"candidates"`
}

// TestLifecycleEvent is the payload for TEST_STARTED and TEST_ENDED.
type TestLifecycleEvent struct {
	EventType EventKind `json:"eventType"`
	TestID    string    `json:"testId"`
}

// CandidateInfo is the display identity resolved from the candidate directory.
type CandidateInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
