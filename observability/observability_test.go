package observability_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aalemi-dev/topic-audit/observability"
)

func TestOperationContextStatus(t *testing.T) {
	ok := observability.OperationContext{Component: "kafka", Operation: "poll", Duration: time.Millisecond}
	assert.Equal(t, "success", ok.Status())

	failed := observability.OperationContext{Component: "kafka", Operation: "commit", Error: errors.New("boom")}
	assert.Equal(t, "error", failed.Status())
}

func TestNoOpObserver(t *testing.T) {
	observer := observability.NewNoOpObserver()

	assert.NotPanics(t, func() {
		observer.ObserveOperation(observability.OperationContext{Component: "test", Operation: "test"})
	})
}
