package kafka

import (
	"context"

	"github.com/aalemi-dev/topic-audit/observability"
	"go.uber.org/fx"
)

// FXModule is an fx.Module that provides and configures the Kafka client.
//
// The module provides:
// 1. *KafkaClient (concrete type) for direct use
// 2. Client interface for dependency injection
// 3. Lifecycle management that closes the client on shutdown
//
// Usage:
//
//	app := fx.New(
//	    kafka.FXModule,
//	    fx.Supply(kafkaConfig),
//	)
var FXModule = fx.Module("kafka",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(k *KafkaClient) Client { return k },
			fx.As(new(Client)),
		),
	),
	fx.Invoke(RegisterKafkaLifecycle),
)

// KafkaParams groups the dependencies needed to create a Kafka client
type KafkaParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a new Kafka client using dependency injection.
// The optional logger and observer are attached before the client is returned.
func NewClientWithDI(params KafkaParams) (*KafkaClient, error) {
	client, err := NewClient(params.Config)
	if err != nil {
		return nil, err
	}

	if params.Logger != nil {
		client.logger = params.Logger
	}

	if params.Observer != nil {
		client.observer = params.Observer
	}

	return client, nil
}

// KafkaLifecycleParams groups the dependencies needed for Kafka lifecycle management
type KafkaLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *KafkaClient
}

// RegisterKafkaLifecycle closes the client when the application stops.
// Close is idempotent, so a client already closed by its owner is left as is.
func RegisterKafkaLifecycle(params KafkaLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Client.logInfo(ctx, "Kafka client started", map[string]interface{}{
				"group_id": params.Client.GroupID(),
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Client.logInfo(ctx, "Shutting down Kafka client", nil)
			if err := params.Client.Close(); err != nil {
				params.Client.logWarn(ctx, "Failed to close Kafka client", err, nil)
			}
			return nil
		},
	})
}
