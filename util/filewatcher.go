package util

import "time"

// debounceDelay is how long a file must stay quiet before its change is reported.
const debounceDelay = 300 * time.Millisecond
