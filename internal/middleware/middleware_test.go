package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/wyrgame/internal/observability"
	wyrtestutil "github.com/mcoot/wyrgame/internal/testutil"
)

func TestRecoveryTurnsPanicIntoResponse(t *testing.T) {
	var handled error
	handler := Recovery(wyrtestutil.NopLogger(), func(w http.ResponseWriter, r *http.Request, err error) {
		handled = err
		DefaultPanicHandler(w, r, err)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			panic("boom")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Error(t, handled)
	assert.Contains(t, handled.Error(), "boom")

	// Each request gets a fresh boundary
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/fine", nil))
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestLoggingLabelsByRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.New(reg)

	r := mux.NewRouter()
	r.Use(Logging(wyrtestutil.NopLogger(), metrics))
	r.HandleFunc("/players/{player_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	})

	for _, id := range []string{"p_1", "p_2"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/players/"+id, nil))
		require.Equal(t, http.StatusAccepted, rr.Code)
	}

	count, err := testutil.GatherAndCount(reg, "wyr_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "both paths share one series")
}

func TestResponseWriterCapturesStatusAndSize(t *testing.T) {
	rw := NewResponseWriter(httptest.NewRecorder())
	assert.Equal(t, http.StatusOK, rw.Status())

	rw.WriteHeader(http.StatusTeapot)
	_, _ = rw.Write([]byte("short and stout"))

	assert.Equal(t, http.StatusTeapot, rw.Status())
	assert.Equal(t, 15, rw.Size())
}
