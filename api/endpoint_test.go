package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"realtydesk/session"
)

type echoPayload struct {
	Value string `json:"value"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *session.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	store := session.NewMemoryStore()
	return NewClient(srv.URL, 5*time.Second, store), store
}

func TestEndpoint_successStoresPayload(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value":"ok"}`))
	})
	ep := NewEndpoint[echoPayload](client, http.MethodGet, "/api/thing", nil)

	out := ep.Execute(context.Background())
	if out.Err != "" {
		t.Fatalf("unexpected error %q", out.Err)
	}
	if out.Data == nil || out.Data.Value != "ok" {
		t.Fatalf("Data got %+v, want value ok", out.Data)
	}
	if out.InFlight {
		t.Fatalf("resolved outcome still marked in flight")
	}
}

func TestEndpoint_errorBodyFieldsBecomeTheMessage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		body string
		want string
	}{
		{`{"error":"boom"}`, "boom"},
		{`{"message":"nope"}`, "nope"},
		{`{"unrelated":1}`, "Request failed"},
		{`not even json`, "Request failed"},
	}
	for _, c := range cases {
		body := c.body
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(body))
		})
		ep := NewEndpoint[echoPayload](client, http.MethodGet, "/x", nil)
		out := ep.Execute(context.Background())
		if out.Err != c.want {
			t.Fatalf("body %q: Err got %q, want %q", c.body, out.Err, c.want)
		}
	}
}

func TestEndpoint_failureKeepsPriorData(t *testing.T) {
	t.Parallel()

	var fail atomic.Bool
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"down"}`))
			return
		}
		w.Write([]byte(`{"value":"first"}`))
	})
	ep := NewEndpoint[echoPayload](client, http.MethodGet, "/x", nil)

	if out := ep.Execute(context.Background()); out.Err != "" {
		t.Fatalf("first call failed: %q", out.Err)
	}
	fail.Store(true)
	out := ep.Execute(context.Background())
	if out.Err != "down" {
		t.Fatalf("Err got %q, want down", out.Err)
	}
	if out.Data == nil || out.Data.Value != "first" {
		t.Fatalf("prior data lost on failure: %+v", out.Data)
	}
}

func TestEndpoint_requestHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	var gotBody []byte
	client, store := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{}`))
	})
	store.Set(session.KeyToken, "T")

	ep := NewEndpoint[struct{}](client, http.MethodPost, "/x", map[string]string{"a": "b"})
	ep.Execute(context.Background())

	if got.Get("Authorization") != "Bearer T" {
		t.Fatalf("Authorization got %q", got.Get("Authorization"))
	}
	if got.Get("Content-Type") != "application/json" {
		t.Fatalf("Content-Type got %q", got.Get("Content-Type"))
	}
	if got.Get("X-Request-ID") == "" {
		t.Fatalf("X-Request-ID missing")
	}
	if string(gotBody) != `{"a":"b"}` {
		t.Fatalf("body got %s", gotBody)
	}
}

func TestEndpoint_getNeverCarriesABody(t *testing.T) {
	t.Parallel()

	var gotBody []byte
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{}`))
	})
	ep := NewEndpoint[struct{}](client, http.MethodGet, "/x", map[string]string{"a": "b"})
	ep.ExecuteWith(context.Background(), Override{Body: map[string]string{"c": "d"}})

	if len(gotBody) != 0 {
		t.Fatalf("GET sent a body: %s", gotBody)
	}
}

func TestEndpoint_formBodyKeepsItsContentType(t *testing.T) {
	t.Parallel()

	var gotType string
	var gotBody []byte
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{}`))
	})
	form := &FormBody{ContentType: "multipart/form-data; boundary=deadbeef", Payload: []byte("--deadbeef--")}
	ep := NewEndpoint[struct{}](client, http.MethodPost, "/x", nil)
	ep.ExecuteWith(context.Background(), Override{Body: form})

	if gotType != form.ContentType {
		t.Fatalf("Content-Type got %q, want %q", gotType, form.ContentType)
	}
	if string(gotBody) != "--deadbeef--" {
		t.Fatalf("body got %s", gotBody)
	}
}

func TestEndpoint_overridesReplaceDescriptorParts(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{}`))
	})
	ep := NewEndpoint[struct{}](client, http.MethodPost, "/api/listings/create", nil)
	ep.ExecuteWith(context.Background(), Override{URL: "/api/listings/42", Method: http.MethodPut})

	if gotMethod != http.MethodPut || gotPath != "/api/listings/42" {
		t.Fatalf("got %s %s, want PUT /api/listings/42", gotMethod, gotPath)
	}
}

func TestEndpoint_absoluteURLBypassesBaseURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"value":"direct"}`))
	}))
	t.Cleanup(srv.Close)

	client := NewClient("http://localhost:1", 5*time.Second, session.NewMemoryStore())
	ep := NewEndpoint[echoPayload](client, http.MethodGet, srv.URL+"/direct", nil)
	out := ep.Execute(context.Background())
	if out.Err != "" || out.Data == nil || out.Data.Value != "direct" {
		t.Fatalf("got %+v / %q, want direct payload", out.Data, out.Err)
	}
}

func TestEndpoint_transportFailureBecomesMessage(t *testing.T) {
	t.Parallel()

	client := NewClient("http://127.0.0.1:1", time.Second, session.NewMemoryStore())
	ep := NewEndpoint[echoPayload](client, http.MethodGet, "/x", nil)
	out := ep.Execute(context.Background())
	if out.Err == "" {
		t.Fatalf("expected a transport error message")
	}
	if out.Data != nil {
		t.Fatalf("Data should be absent, got %+v", out.Data)
	}
}

func TestEndpoint_decodeFailureBecomesMessage(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	})
	ep := NewEndpoint[echoPayload](client, http.MethodGet, "/x", nil)
	out := ep.Execute(context.Background())
	if !strings.Contains(out.Err, "decode response") {
		t.Fatalf("Err got %q, want decode failure", out.Err)
	}
}

func TestEndpoint_closedEndpointDropsResolutions(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.Write([]byte(`{"value":"late"}`))
	})
	ep := NewEndpoint[echoPayload](client, http.MethodGet, "/x", nil)

	done := make(chan struct{})
	go func() {
		ep.Execute(context.Background())
		close(done)
	}()
	<-started
	ep.Close()
	close(release)
	<-done

	out := ep.Outcome()
	if out.Data != nil || out.Err != "" || out.InFlight {
		t.Fatalf("closed endpoint was updated: %+v", out)
	}
}
