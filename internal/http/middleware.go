package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/events"
)

const (
	HeaderCorrelationID = "X-Correlation-Id"
	HeaderCausationID   = "X-Causation-Id"
)

// CorrelationID accepts or generates a correlation id, echoes it to the client
// and stores it on the request context for emitted events.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cid := r.Header.Get(HeaderCorrelationID)
		if cid == "" {
			cid = uuid.NewString()
		}

		w.Header().Set(HeaderCorrelationID, cid)

		ctx := events.ContextWithMetadata(r.Context(), events.EnvelopeMetadata{
			CorrelationID: cid,
			CausationID:   r.Header.Get(HeaderCausationID),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func correlationIDFrom(ctx context.Context) string {
	return events.MetadataFromContext(ctx).CorrelationID
}
