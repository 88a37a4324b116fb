package metrics

import (
	"context"
	"document-archive/internal/archive"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/documents/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/documents/1", "/api/documents/2", "/nowhere"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/api/documents/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Requests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RequestDuration))
}

func TestChanged_CountsByAction(t *testing.T) {
	m := New(prometheus.NewRegistry())
	ctx := context.Background()

	m.Changed(ctx, archive.Change{Action: archive.ActionArchived, RecordID: 1})
	m.Changed(ctx, archive.Change{Action: archive.ActionArchived, RecordID: 2})
	m.Changed(ctx, archive.Change{Action: archive.ActionRestored, RecordID: 1})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.ArchiveChanges.WithLabelValues(archive.ActionArchived)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ArchiveChanges.WithLabelValues(archive.ActionRestored)))
}

func TestIndexed(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Indexed(42)
	assert.Equal(t, float64(42), testutil.ToFloat64(m.IndexedDocs))
}
