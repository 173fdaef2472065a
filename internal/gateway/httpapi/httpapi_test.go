package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pablasso/taskloop/internal/gateway"
	"github.com/pablasso/taskloop/internal/orchestrator"
	"github.com/pablasso/taskloop/internal/task"
	"github.com/pablasso/taskloop/internal/testutil"
	"github.com/pablasso/taskloop/internal/transcript"
)

func newRoundTrip(t *testing.T, fake *testutil.FakeGateway) *Client {
	t.Helper()
	srv := httptest.NewServer(NewServer(fake))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second)
}

func TestRoundTripExecute(t *testing.T) {
	fake := &testutil.FakeGateway{ExecuteResults: []testutil.ExecuteResult{{Response: " Day 1: fly to Tokyo "}}}
	client := newRoundTrip(t, fake)

	resp, err := client.Execute(context.Background(), gateway.ExecuteRequest{Objective: "plan a trip", Task: "book hotel"})
	require.NoError(t, err)
	require.Equal(t, " Day 1: fly to Tokyo ", resp.Response)

	calls := fake.ExecuteCalls()
	require.Len(t, calls, 1)
	require.Equal(t, gateway.ExecuteRequest{Objective: "plan a trip", Task: "book hotel"}, calls[0])
}

func TestRoundTripGenerate(t *testing.T) {
	fake := &testutil.FakeGateway{GenerateResults: []testutil.GenerateResult{
		{Tasks: testutil.Tasks("2", "book hotel", "3", "book flight")},
	}}
	client := newRoundTrip(t, fake)

	resp, err := client.Generate(context.Background(), gateway.GenerateRequest{
		Objective: "plan a trip",
		Task:      task.Task{ID: "1", Name: "make a list"},
		Result:    "list",
	})
	require.NoError(t, err)
	require.Equal(t, testutil.Tasks("2", "book hotel", "3", "book flight"), resp.Response)

	calls := fake.GenerateCalls()
	require.Len(t, calls, 1)
	require.Equal(t, "1", calls[0].Task.ID)
	require.Equal(t, []task.Task{}, calls[0].TaskList)
}

func TestServerGenerateNilBecomesEmptyArray(t *testing.T) {
	fake := &testutil.FakeGateway{GenerateResults: []testutil.GenerateResult{{Tasks: nil}}}
	srv := httptest.NewServer(NewServer(fake))
	defer srv.Close()

	resp, err := http.Post(srv.URL+CreatePath, "application/json", strings.NewReader(`{"objective":"x","taskList":[],"task":{"taskID":"1","taskName":"y"},"result":"z"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.JSONEq(t, `[]`, string(body["response"]))
}

func TestServerRejectsBadRequests(t *testing.T) {
	srv := httptest.NewServer(NewServer(&testutil.FakeGateway{}))
	defer srv.Close()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "invalid JSON", method: http.MethodPost, path: ExecutePath, body: `{`, status: http.StatusBadRequest},
		{name: "missing task", method: http.MethodPost, path: ExecutePath, body: `{"objective":"x"}`, status: http.StatusBadRequest},
		{name: "missing objective", method: http.MethodPost, path: CreatePath, body: `{"taskList":[]}`, status: http.StatusBadRequest},
		{name: "wrong method", method: http.MethodGet, path: ExecutePath, status: http.StatusMethodNotAllowed},
		{name: "unknown path", method: http.MethodPost, path: "/api/nope", body: `{}`, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestServerGatewayFailureIsBadGateway(t *testing.T) {
	fake := &testutil.FakeGateway{ExecuteResults: []testutil.ExecuteResult{{Err: errors.New("model overloaded")}}}
	client := newRoundTrip(t, fake)

	_, err := client.Execute(context.Background(), gateway.ExecuteRequest{Objective: "x", Task: "y"})
	require.ErrorIs(t, err, gateway.ErrGatewayFailure)
	require.Contains(t, err.Error(), "502")
	require.Contains(t, err.Error(), "model overloaded")
}

func TestServerSetsRequestID(t *testing.T) {
	srv := httptest.NewServer(NewServer(&testutil.FakeGateway{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get(requestIDHeader))
}

func TestClientMalformedCreateResponse(t *testing.T) {
	tests := map[string]string{
		"missing field": `{"tasks":[]}`,
		"null":          `{"response":null}`,
		"object":        `{"response":{"taskID":"1"}}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Generate(context.Background(), gateway.GenerateRequest{Objective: "x"})
			require.ErrorIs(t, err, gateway.ErrMalformedResponse)
			require.ErrorIs(t, err, gateway.ErrGatewayFailure)
		})
	}
}

func TestClientRequiresURL(t *testing.T) {
	_, err := NewClient("", 0).Execute(context.Background(), gateway.ExecuteRequest{Objective: "x", Task: "y"})
	require.ErrorIs(t, err, gateway.ErrGatewayFailure)
}

func TestClientCancellationAbortsRequest(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		close(started)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := NewClient(srv.URL, 0).Execute(ctx, gateway.ExecuteRequest{Objective: "x", Task: "y"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoopOverHTTP(t *testing.T) {
	fake := &testutil.FakeGateway{
		ExecuteResults: []testutil.ExecuteResult{{Response: "list made"}, {Response: "hotel booked"}},
		GenerateResults: []testutil.GenerateResult{
			{Tasks: testutil.Tasks("2", "book hotel")},
			{Tasks: []task.Task{}},
		},
	}
	client := newRoundTrip(t, fake)

	run, err := orchestrator.New(client, client).Start(context.Background(), "plan a trip", 0)
	require.NoError(t, err)

	outcome, err := run.Wait()
	require.NoError(t, err)
	require.Equal(t, orchestrator.OutcomeQueueEmpty, outcome)

	last, ok := run.Transcript().Last(transcript.KindTaskResult)
	require.True(t, ok)
	require.Equal(t, "hotel booked", last.Text)
	require.Len(t, fake.ExecuteCalls(), 2)
}
