package realtime

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/hanagata/kioskd/realtime"

var logger = otelslog.NewLogger(scopeName)
