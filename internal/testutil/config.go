package testutil

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/lepinkainen/mensa/internal/config"
)

// ResetConfig resets viper to the application defaults and resets it again
// when the test completes.
func ResetConfig(t *testing.T) {
	t.Helper()

	viper.Reset()
	config.SetDefaults()

	t.Cleanup(viper.Reset)
}
