package kafka

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSASLMechanism(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		mechanism, err := createSASLMechanism(SASLConfig{Mechanism: "PLAIN", Username: "u", Password: "p"})
		require.NoError(t, err)
		assert.Equal(t, plain.Mechanism{Username: "u", Password: "p"}, mechanism)
	})

	for _, name := range []string{"SCRAM-SHA-256", "SCRAM-SHA-512"} {
		t.Run(name, func(t *testing.T) {
			mechanism, err := createSASLMechanism(SASLConfig{Mechanism: name, Username: "u", Password: "p"})
			require.NoError(t, err)
			assert.Equal(t, name, mechanism.Name())
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		_, err := createSASLMechanism(SASLConfig{Mechanism: "GSSAPI"})
		assert.ErrorContains(t, err, "unsupported SASL mechanism")
	})
}

func TestCreateTLSConfig(t *testing.T) {
	t.Run("insecure skip verify", func(t *testing.T) {
		cfg, err := createTLSConfig(TLSConfig{Enabled: true, InsecureSkipVerify: true})
		require.NoError(t, err)
		assert.True(t, cfg.InsecureSkipVerify)
		assert.Nil(t, cfg.RootCAs)
	})

	t.Run("missing CA file", func(t *testing.T) {
		_, err := createTLSConfig(TLSConfig{Enabled: true, CACertPath: filepath.Join(t.TempDir(), "missing.pem")})
		assert.ErrorContains(t, err, "failed to read CA cert")
	})

	t.Run("invalid CA file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ca.pem")
		require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

		_, err := createTLSConfig(TLSConfig{Enabled: true, CACertPath: path})
		assert.ErrorContains(t, err, "failed to parse CA cert")
	})
}

func TestNewClientDialer(t *testing.T) {
	t.Run("applies SASL and TLS", func(t *testing.T) {
		client, err := NewClient(Config{
			Brokers:  []string{"localhost:9092"},
			ClientID: "topic-audit",
			TLS:      TLSConfig{Enabled: true, InsecureSkipVerify: true},
			SASL:     SASLConfig{Enabled: true, Mechanism: "PLAIN", Username: "u", Password: "p"},
		})
		require.NoError(t, err)
		assert.Equal(t, "topic-audit", client.dialer.ClientID)
		assert.NotNil(t, client.dialer.TLS)
		assert.NotNil(t, client.dialer.SASLMechanism)
	})

	t.Run("rejects invalid SASL settings", func(t *testing.T) {
		_, err := NewClient(Config{
			Brokers: []string{"localhost:9092"},
			SASL:    SASLConfig{Enabled: true, Mechanism: "bogus"},
		})
		assert.ErrorContains(t, err, "failed to create SASL mechanism")
	})
}
