package schema_registry

import (
	"context"

	"github.com/aalemi-dev/topic-audit/observability"
	"go.uber.org/fx"
)

// FXModule is an fx.Module that provides the Schema Registry client and the
// Avro record decoder built on it.
//
// The module provides:
// 1. *Client (concrete type) and the Registry interface
// 2. *AvroRecordDecoder (concrete type) and the RecordDecoder interface
// 3. Lifecycle logging
//
// Usage:
//
//	app := fx.New(
//	    schema_registry.FXModule,
//	    fx.Supply(schema_registry.Config{URL: "http://localhost:8081"}),
//	)
var FXModule = fx.Module("schema_registry",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(c *Client) Registry { return c },
			fx.As(new(Registry)),
		),
		NewAvroRecordDecoder,
		fx.Annotate(
			func(d *AvroRecordDecoder) RecordDecoder { return d },
			fx.As(new(RecordDecoder)),
		),
	),
	fx.Invoke(RegisterSchemaRegistryLifecycle),
)

// SchemaRegistryParams groups the dependencies needed to create a Schema Registry client
type SchemaRegistryParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a new Schema Registry client using dependency injection.
// The optional logger and observer are attached before the client is returned.
func NewClientWithDI(params SchemaRegistryParams) (*Client, error) {
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

// SchemaRegistryLifecycleParams groups the dependencies needed for Schema Registry lifecycle management
type SchemaRegistryLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *Client
}

// RegisterSchemaRegistryLifecycle logs client start and stop, with the
// number of writer schemas fetched during the run. The HTTP client holds no
// resources that need closing.
func RegisterSchemaRegistryLifecycle(params SchemaRegistryLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			params.Client.logInfo(ctx, "Schema Registry client initialized", map[string]interface{}{
				"url": params.Client.url,
			})
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Client.logInfo(ctx, "Schema Registry client shutdown", map[string]interface{}{
				"cached_schemas": params.Client.cachedSchemas(),
			})
			return nil
		},
	})
}
