// Build metadata stamped through -ldflags="-X ...". A binary built without
// stamps reports "unknown" everywhere; go test never stamps, so IsTestMode
// stays false there unless the test build injects it explicitly.
// CAUTION: the cache's invariant handling keys off IsTestMode; keep these
// variables addressable by the linker.

package utils

import (
	"log/slog"
	"strconv"
	"time"
)

var (
	Version   = "unknown"
	Commit    = "unknown"
	BuildTime = "unknown"
	TestMode  string // "true" when the build is a test harness.
)

var (
	IsTestMode bool
	StartTime  = time.Now() // When this process came up.
)

func init() {
	if TestMode == "" {
		return
	}
	isTest, err := strconv.ParseBool(TestMode)
	if err != nil {
		slog.Warn("Unparsable TestMode build stamp, assuming a regular build.", "value", TestMode)
		return
	}
	IsTestMode = isTest
}
