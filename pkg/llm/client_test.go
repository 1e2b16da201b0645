package llm

import (
	"context"
	"testing"

	pb "github.com/constraintwatch/constraintwatch/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/semaphore"
	"google.golang.org/grpc"
)

// fakeRPC is a minimal stand-in for pb.LLMServiceClient used to exercise
// retry and permanent-failure behavior without a real sidecar.
type fakeRPC struct {
	responses []fakeResponse
	calls     int
}

type fakeResponse struct {
	resp *pb.ExtractResponse
	err  error
}

func (f *fakeRPC) Extract(_ context.Context, _ *pb.ExtractRequest, _ ...grpc.CallOption) (*pb.ExtractResponse, error) {
	r := f.responses[f.calls]
	f.calls++
	return r.resp, r.err
}

func newTestClient(rpc pb.LLMServiceClient) *Client {
	cfg := DefaultConfig()
	cfg.Retries = 2
	cfg.RetryBackoffSeconds = 0
	return &Client{cfg: cfg, rpc: rpc, gate: semaphore.NewWeighted(cfg.Concurrency)}
}

func TestExtractRetriesOn5xxThenSucceeds(t *testing.T) {
	fake := &fakeRPC{responses: []fakeResponse{
		{resp: &pb.ExtractResponse{StatusCode: 500, Error: "upstream busy"}},
		{resp: &pb.ExtractResponse{StatusCode: 200, Text: "ok"}},
	}}
	c := newTestClient(fake)

	out, err := c.Extract(context.Background(), "prompt", "system")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, fake.calls)
}

func TestExtractFailsImmediatelyOn4xx(t *testing.T) {
	fake := &fakeRPC{responses: []fakeResponse{
		{resp: &pb.ExtractResponse{StatusCode: 400, Error: "bad request"}},
	}}
	c := newTestClient(fake)

	_, err := c.Extract(context.Background(), "prompt", "system")
	require.Error(t, err)
	assert.Equal(t, 1, fake.calls)
}

func TestExtractExhaustsRetriesAndFails(t *testing.T) {
	fake := &fakeRPC{responses: []fakeResponse{
		{resp: &pb.ExtractResponse{StatusCode: 503}},
		{resp: &pb.ExtractResponse{StatusCode: 503}},
		{resp: &pb.ExtractResponse{StatusCode: 503}},
	}}
	c := newTestClient(fake)

	_, err := c.Extract(context.Background(), "prompt", "system")
	require.Error(t, err)
	assert.Equal(t, 3, fake.calls)
}
