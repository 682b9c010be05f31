package e2e

// Resolve the suite configuration (and its .env file) before any test in
// the package reads it.

import (
	"github.com/TayyabaHussain58/InventoryApp/tests/e2e/config"
)

func init() {
	config.GetConfig()
}
