package push

// Outcome classifies a single delivery attempt. The fan-out loop only
// distinguishes "worked", "endpoint is permanently dead" and "anything else";
// dead endpoints are deleted, anything else is counted and kept.
type Outcome int

const (
	OutcomeSent Outcome = iota
	OutcomeInvalidEndpoint
	OutcomeError
)

type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}
