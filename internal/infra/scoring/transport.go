package scoring

import (
	"net/http"
	"time"
)

// newTransport is a pooled transport shared by every call to the service
func newTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second, // scoring can be slow on large files
		ForceAttemptHTTP2:     true,
	}
}
