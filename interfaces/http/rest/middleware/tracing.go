package middleware

import (
	"fmt"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"ideaweaver/pkg/observability"
)

// Tracing wraps each request in an X-Ray segment. The segment is named
// after the method and path so traces group by route; server errors
// mark the segment failed.
func Tracing(tracer *observability.Tracer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, seg := tracer.StartSegment(r.Context(), r.Method+" "+r.URL.Path)
			defer seg.Close(nil)

			tracer.AddAnnotation(ctx, "method", r.Method)
			tracer.AddAnnotation(ctx, "path", r.URL.Path)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			if ww.Status() >= http.StatusInternalServerError {
				tracer.CaptureError(ctx, fmt.Errorf("request failed with status %d", ww.Status()))
			}
		})
	}
}
