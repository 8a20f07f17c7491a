package observability

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer opens X-Ray segments for API requests. Segment names carry
// the service prefix so traces from several services stay separable.
type Tracer struct {
	service string
}

// NewTracer creates a tracer for the named service
func NewTracer(service string) *Tracer {
	return &Tracer{service: service}
}

// StartSegment opens a root segment for the request
func (t *Tracer) StartSegment(ctx context.Context, name string) (context.Context, *xray.Segment) {
	return xray.BeginSegment(ctx, fmt.Sprintf("%s.%s", t.service, name))
}

// AddAnnotation puts an indexed key/value on the active segment
func (t *Tracer) AddAnnotation(ctx context.Context, key, value string) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddAnnotation(key, value)
	}
}

// CaptureError marks the active segment as failed
func (t *Tracer) CaptureError(ctx context.Context, err error) {
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddError(err)
	}
}
