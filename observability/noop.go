package observability

// NoOpObserver discards every notification.
type NoOpObserver struct{}

// ObserveOperation does nothing.
func (n *NoOpObserver) ObserveOperation(ctx OperationContext) {}

// NewNoOpObserver creates a new NoOpObserver.
func NewNoOpObserver() Observer {
	return &NoOpObserver{}
}
