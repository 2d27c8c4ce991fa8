package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by dataset downloads. The multi-year Kaggle archive
// is large, hence the generous timeout.
var HTTPClient = &http.Client{
	Timeout: 300 * time.Second,
}
