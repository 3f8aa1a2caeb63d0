package resolve

// Status classifies a provider attempt for progress reporting.
type Status string

const (
	StatusPending  Status = "pending"
	StatusNotFound Status = "notfound"
	StatusFailure  Status = "failure"
	StatusSuccess  Status = "success"
)

// Event is one progress update. Events are a side channel: they never affect
// control flow, and a resolution behaves identically with no listener at all.
type Event struct {
	ProviderID string
	Percentage int
	Status     Status

	// Err carries the provider error on StatusFailure.
	Err error
}

// emit delivers an event to the listener when one is set.
func (o *Options) emit(e Event) {
	if o.OnProgress != nil {
		o.OnProgress(e)
	}
}
