package util

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/xyproto/env/v2"
)

// LoggingEnabled turns LogF on. It starts from RV32IAS_DEBUG.
var LoggingEnabled = env.Bool("RV32IAS_DEBUG")

// LogURL is where LogF posts messages. It starts from RV32IAS_LOG_URL.
var LogURL = env.Str("RV32IAS_LOG_URL", "http://localhost:8006/log")

// LogF sends a debug message to the log sink without waiting for it to be delivered.
func LogF(format string, args ...interface{}) {
	if !LoggingEnabled {
		return
	}
	message := fmt.Sprintf(format, args...)
	go func() {
		resp, err := http.Post(LogURL, "text/plain", strings.NewReader(message))
		if err == nil {
			resp.Body.Close()
		}
	}()
}
