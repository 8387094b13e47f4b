package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/pricewatch/internal/common"
	"github.com/ternarybob/pricewatch/internal/interfaces"
	"github.com/ternarybob/pricewatch/internal/services/monitor"
	"github.com/ternarybob/pricewatch/internal/services/simulator"
	"github.com/ternarybob/pricewatch/internal/services/tracker"
)

// stubExplainer returns a canned frame stream and records the prompt.
type stubExplainer struct {
	frames string
	err    error
	prompt string
}

func (s *stubExplainer) Stream(ctx context.Context, prompt string) (io.ReadCloser, error) {
	s.prompt = prompt
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.frames)), nil
}

func newExplainFixture(t *testing.T, explainer interfaces.Explainer) (*ExplainHandler, *handlerFixture) {
	t.Helper()
	logger := arbor.NewLogger()

	trackerSvc, err := tracker.NewService(nil, logger)
	require.NoError(t, err)

	storage := newFakeProductStorage()
	resolver := &fakeResolver{product: &interfaces.ResolvedProduct{Title: "Test", Price: 100, Platform: "Amazon"}}
	config := &common.MonitorConfig{Enabled: false}
	monitorSvc := monitor.NewService(storage, resolver, trackerSvc, simulator.NewService(logger), config, 30, logger)

	f := &handlerFixture{
		handler:  NewProductHandler(monitorSvc, trackerSvc, logger),
		storage:  storage,
		resolver: resolver,
		tracker:  trackerSvc,
	}
	return NewExplainHandler(monitorSvc, explainer, logger), f
}

func TestExplainHandler_RelaysFrames(t *testing.T) {
	explainer := &stubExplainer{
		frames: "data: {\"content\":\"Hold \"}\n\n" +
			"data: {\"content\":\"your price.\"}\n\n" +
			"data: [DONE]\n\n",
	}
	handler, f := newExplainFixture(t, explainer)
	f.seedProduct(t, "prod_1", "default")

	r := httptest.NewRequest("POST", "/api/products/prod_1/explain", strings.NewReader(`{"oldPrice":2500,"newPrice":2250}`))
	rec := httptest.NewRecorder()
	handler.ExplainHandler(rec, r, "prod_1")

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "data: {\"content\":\"Hold \"}")
	assert.Contains(t, body, "data: {\"content\":\"your price.\"}")
	assert.Contains(t, body, "data: [DONE]")

	// The prompt carries the change details and the analytical context
	assert.Contains(t, explainer.prompt, "- Previous Price: ₹2500")
	assert.Contains(t, explainer.prompt, "- New Price: ₹2250")
	assert.Contains(t, explainer.prompt, "WEEKLY PRICE ANALYSIS:")
}

func TestExplainHandler_UnknownProduct(t *testing.T) {
	handler, _ := newExplainFixture(t, &stubExplainer{})

	r := httptest.NewRequest("POST", "/api/products/prod_missing/explain", strings.NewReader(`{"oldPrice":100,"newPrice":90}`))
	rec := httptest.NewRecorder()
	handler.ExplainHandler(rec, r, "prod_missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExplainHandler_WrongOwner(t *testing.T) {
	handler, f := newExplainFixture(t, &stubExplainer{})
	f.seedProduct(t, "prod_1", "alice")

	r := httptest.NewRequest("POST", "/api/products/prod_1/explain", strings.NewReader(`{"oldPrice":100,"newPrice":90}`))
	r.Header.Set("X-Owner-ID", "bob")
	rec := httptest.NewRecorder()
	handler.ExplainHandler(rec, r, "prod_1")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExplainHandler_StreamStartFailure(t *testing.T) {
	handler, f := newExplainFixture(t, &stubExplainer{err: io.ErrUnexpectedEOF})
	f.seedProduct(t, "prod_1", "default")

	r := httptest.NewRequest("POST", "/api/products/prod_1/explain", strings.NewReader(`{"oldPrice":100,"newPrice":90}`))
	rec := httptest.NewRecorder()
	handler.ExplainHandler(rec, r, "prod_1")

	// Failure after headers are committed arrives as an SSE error frame
	assert.Contains(t, rec.Body.String(), "\"error\"")
}

func TestExplainHandler_NoExplainerConfigured(t *testing.T) {
	handler, f := newExplainFixture(t, nil)
	f.seedProduct(t, "prod_1", "default")

	r := httptest.NewRequest("POST", "/api/products/prod_1/explain", strings.NewReader(`{"oldPrice":100,"newPrice":90}`))
	rec := httptest.NewRecorder()
	handler.ExplainHandler(rec, r, "prod_1")

	assert.Contains(t, rec.Body.String(), "Explanation service is not configured")
}
