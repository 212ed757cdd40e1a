package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestFXModuleProvidesLogger(t *testing.T) {
	var (
		client *LoggerClient
		iface  Logger
	)

	app := fxtest.New(t,
		fx.Supply(Config{Level: Debug, ServiceName: "fx-test"}),
		FXModule,
		fx.WithLogger(NewFxEventLogger),
		fx.Populate(&client, &iface),
	)
	require.NoError(t, app.Start(context.Background()))
	defer app.RequireStop()

	require.NotNil(t, client)
	assert.Same(t, client, iface)
}
