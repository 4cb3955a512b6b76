package model

// Event is one message from the live push channel. Exactly one of the
// concrete variants below.
type Event interface {
	isEvent()
}

// UpdateEvent carries a newly arrived status.
type UpdateEvent struct {
	Status Status
}

// DeleteEvent announces that a status was removed upstream.
type DeleteEvent struct {
	TargetID string
}

func (UpdateEvent) isEvent() {}
func (DeleteEvent) isEvent() {}
