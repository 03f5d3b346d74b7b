package pkg

import (
	"context"
	"sync"

	"ykjam/azulgw/pkg/azul/response"
)

type gatewayCall struct {
	payload   interface{}
	operation string
}

type fakeReply struct {
	resp *response.Gateway
	err  error
}

// fakeGatewayClient records every call and replays queued replies in order.
// With an empty queue it answers with a plain approval.
type fakeGatewayClient struct {
	mu    sync.Mutex
	calls []gatewayCall
	queue []fakeReply
}

func (f *fakeGatewayClient) enqueue(resp *response.Gateway, err error) {
	f.mu.Lock()
	f.queue = append(f.queue, fakeReply{resp: resp, err: err})
	f.mu.Unlock()
}

func (f *fakeGatewayClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeGatewayClient) lastCall() gatewayCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeGatewayClient) Send(_ context.Context, payload interface{}, operation string) (*response.Gateway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, gatewayCall{payload: payload, operation: operation})
	if len(f.queue) == 0 {
		return &response.Gateway{
			ResponseMessage: response.MessageApproved,
			IsoCode:         response.IsoCodeApproved,
		}, nil
	}
	reply := f.queue[0]
	f.queue = f.queue[1:]
	return reply.resp, reply.err
}

func testConfig() Config {
	return Config{
		BaseUrl: "https://gateway.example/webservices/JSON/Default.aspx",
		Auth1:   "auth1",
		Auth2:   "auth2",
		Store:   "39038540035",
		Channel: "EC",
	}
}
