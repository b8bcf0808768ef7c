package alert

import (
	"context"

	"github.com/madhava-cloud/gateway/internal/domain"
)

// History persists dispatched alerts for later retrieval.
type History interface {
	Append(ctx context.Context, a domain.Alert) error
}

// Subscriber receives alerts as they are dispatched. A Send error marks the
// subscriber dead and it is dropped from the broadcast set.
type Subscriber interface {
	Send(a domain.Alert) error
}
