package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvMap(t *testing.T) {

	t.Run("maps dotted hyphenated keys to env var names", func(t *testing.T) {
		t.Setenv("KAFKA__CONSUMER__BOOTSTRAP_SERVERS", "localhost:9092")

		v, ok := EnvMap{}.Lookup("kafka.consumer.bootstrap-servers")
		assert.True(t, ok)
		assert.Equal(t, "localhost:9092", v)
	})

	t.Run("reports unset variables", func(t *testing.T) {
		_, ok := EnvMap{}.Lookup("history.no-such-key")
		assert.False(t, ok)
	})
}
