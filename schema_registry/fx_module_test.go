package schema_registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestFXModule(t *testing.T) {
	srv := newRegistryServer(t, map[int]string{1: keySchemaJSON})
	logger := &captureLogger{}

	var (
		registry Registry
		decoder  RecordDecoder
	)
	app := fxtest.New(t,
		fx.Supply(Config{URL: srv.URL}),
		fx.Provide(func() Logger { return logger }),
		FXModule,
		fx.Populate(&registry, &decoder),
	)
	app.RequireStart()
	t.Cleanup(func() { app.RequireStop() })

	assert.True(t, logger.infoCalled)

	rec, err := decoder.DecodeRecord(context.Background(), frame(t, 1, keySchemaJSON, map[string]interface{}{"id": int64(5)}))
	require.NoError(t, err)
	assert.Equal(t, int64(5), rec.Get("id"))

	schema, err := registry.GetSchemaByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, keySchemaJSON, schema)
}
