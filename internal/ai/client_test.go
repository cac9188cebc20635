package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func newTestClient(url string) *Client {
	return NewClient(url, "test-model", 0.7, 128, 2048, 2*time.Second, 5*time.Second)
}

func TestCheckAvailability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"models": []any{}})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if !c.CheckAvailability(context.Background()) {
		t.Fatalf("expected available")
	}
}

func TestCheckAvailabilityBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close() // connection now refused

	c := newTestClient(url)
	if c.CheckAvailability(context.Background()) {
		t.Fatalf("expected unavailable, got available")
	}
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"models": []map[string]any{
				{"name": "mistral-small:latest"},
				{"name": "llama3:latest"},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	got := c.ListModels(context.Background())
	want := []string{"mistral-small:latest", "llama3:latest"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected models: %v", got)
	}
}

func TestListModelsBackendDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(url)
	if got := c.ListModels(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestGenerateSuccess(t *testing.T) {
	var captured generatePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "offre générée", "done": true})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	out, err := c.Generate(context.Background(), Request{Prompt: "génère", System: "instructions"})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if out != "offre générée" {
		t.Fatalf("unexpected output: %q", out)
	}
	if captured.Stream {
		t.Fatalf("blocking call must not request streaming")
	}
	if captured.Model != "test-model" || captured.System != "instructions" {
		t.Fatalf("unexpected payload: %+v", captured)
	}
	if captured.Options.NumPredict != 128 || captured.Options.NumCtx != 2048 {
		t.Fatalf("options not forwarded: %+v", captured.Options)
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	c := newTestClient("http://127.0.0.1:11434")
	if _, err := c.Generate(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error for empty prompt")
	}
}

func TestGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not loaded"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.Generate(context.Background(), Request{Prompt: "x"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", apiErr.StatusCode)
	}
	if apiErr.Body == "" {
		t.Fatalf("expected body captured")
	}
}

func TestGenerateUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(url)
	_, err := c.Generate(context.Background(), Request{Prompt: "x"})
	var unreachable *UnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected *UnreachableError, got %T: %v", err, err)
	}
}

func TestGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "m", 0.7, 1, 1, time.Second, 50*time.Millisecond)
	_, err := c.Generate(context.Background(), Request{Prompt: "x"})
	var timeout *TimeoutError
	if !errors.As(err, &timeout) {
		t.Fatalf("expected *TimeoutError, got %T: %v", err, err)
	}
}

func TestGenerateStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for _, chunk := range []string{"# Offre\n", "Contenu."} {
			fmt.Fprintf(w, `{"response":%q,"done":false}`+"\n", chunk)
			flusher.Flush()
		}
		fmt.Fprintln(w, `{"response":"","done":true}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	var got []string
	err := c.GenerateStream(context.Background(), Request{Prompt: "x"}, func(delta string) {
		got = append(got, delta)
	})
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}
	want := []string{"# Offre\n", "Contenu."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected chunks: %q", got)
	}
}

func TestGenerateStreamStopsOnDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"a","done":false}`)
		fmt.Fprintln(w, `{"response":"b","done":true}`)
		fmt.Fprintln(w, `{"response":"after done","done":false}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	var got []string
	if err := c.GenerateStream(context.Background(), Request{Prompt: "x"}, func(d string) { got = append(got, d) }); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("stream must stop at done: %q", got)
	}
}

func TestGenerateStreamErrorNotInBand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"response":"partial","done":false}`)
		fmt.Fprintln(w, `this is not json`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	var got []string
	err := c.GenerateStream(context.Background(), Request{Prompt: "x"}, func(d string) { got = append(got, d) })
	if err == nil {
		t.Fatalf("expected decode error")
	}
	// The failure is the returned error: nothing error-shaped may have been
	// delivered as generated content.
	if !reflect.DeepEqual(got, []string{"partial"}) {
		t.Fatalf("unexpected chunks: %q", got)
	}
}

func TestGenerateStreamAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model missing", http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.GenerateStream(context.Background(), Request{Prompt: "x"}, func(string) {})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 *APIError, got %v", err)
	}
}

func TestGenerateStreamCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		fmt.Fprintln(w, `{"response":"a","done":false}`)
		flusher.Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(srv.URL)
	errc := make(chan error, 1)
	go func() {
		errc <- c.GenerateStream(ctx, Request{Prompt: "x"}, func(string) {})
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("stream did not stop after cancellation")
	}
}
