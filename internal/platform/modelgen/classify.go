package modelgen

import (
	"context"
	"errors"
	"net"
)

// Kind is the closed set of failure classes surfaced to callers so the UI
// can present a specific message instead of a generic one.
type Kind string

const (
	KindTimeout Kind = "timeout"
	KindNetwork Kind = "network"
	KindModel   Kind = "model"
	KindStorage Kind = "storage"
	KindUnknown Kind = "unknown"
)

// Classify maps an error from the model-call boundary onto a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindNetwork
	}
	var herr *httpError
	if errors.As(err, &herr) {
		switch {
		case herr.StatusCode == 408 || herr.StatusCode == 504:
			return KindTimeout
		case herr.StatusCode >= 500:
			return KindModel
		default:
			return KindModel
		}
	}
	return KindUnknown
}
