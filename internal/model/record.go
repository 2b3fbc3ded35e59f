package model

import "time"

type Credentials struct {
	Username string
	Password string
}

// Record is one funding opportunity as listed on the portal. Title and Link
// are the only required fields; everything else defaults to an empty string
// when the listing markup does not carry it. The long-form fields at the
// bottom are only populated by the enrichment pass.
type Record struct {
	Title      string `json:"title"`
	Funder     string `json:"funder"`
	MaxAmount  string `json:"max_amount"`
	Deadline   string `json:"deadline"`
	Status     string `json:"status"`
	Link       string `json:"link"`
	AreaOfWork string `json:"area_of_work"`

	Description    string `json:"description,omitempty"`
	Eligibility    string `json:"eligibility,omitempty"`
	HowToApply     string `json:"how_to_apply,omitempty"`
	ContactInfo    string `json:"contact_info,omitempty"`
	AdditionalInfo string `json:"additional_info,omitempty"`
}

type FiltersUsed struct {
	Status     []string `json:"status"`
	AreaOfWork []string `json:"area_of_work"`
}

// ScrapeResult is the complete outcome of one scrape invocation.
type ScrapeResult struct {
	Records     []Record    `json:"records"`
	TotalFound  int         `json:"total_found"`
	FiltersUsed FiltersUsed `json:"filters_used"`
	Timestamp   time.Time   `json:"timestamp"`
	DurationMs  int64       `json:"duration_ms"`
	Enriched    bool        `json:"enriched"`
}

type EventKind string

const (
	EventPhase    EventKind = "phase"
	EventProgress EventKind = "progress"
	EventRecord   EventKind = "record"
	EventPage     EventKind = "page"
)

// ProgressEvent is one unit of the ordered status stream emitted during a
// streaming invocation. Payload is one of the *Payload types below, or a
// Record for EventRecord.
type ProgressEvent struct {
	Kind    EventKind `json:"kind"`
	Payload any       `json:"payload"`
}

type PhasePayload struct {
	Phase  string `json:"phase"`
	Detail string `json:"detail,omitempty"`
	Count  int    `json:"count,omitempty"`
}

type ProgressPayload struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
	Title   string `json:"title"`
}

type PagePayload struct {
	Page  int `json:"page"`
	Count int `json:"count"`
}
