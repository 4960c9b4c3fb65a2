package testlog

import (
	"testing"

	"github.com/danmuck/armwire/internal/logging"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	logging.Logf("test=%s", t.Name())
}
