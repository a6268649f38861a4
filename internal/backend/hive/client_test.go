package hive

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeAuth hands out "stale" until refreshed, then "fresh".
type fakeAuth struct {
	refreshes atomic.Int32
	release   chan struct{}
}

func (f *fakeAuth) Token(context.Context) (string, error) { return "stale", nil }

func (f *fakeAuth) Refresh(ctx context.Context) (string, error) {
	f.refreshes.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "fresh", nil
}

func TestClientProducts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" || r.Header.Get("Authorization") != "stale" {
			http.Error(w, "unexpected", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{ //nolint:errcheck // test server
			{"id": "p1", "type": "heating", "state": map[string]any{"name": "Heating", "target": 21}, "props": map[string]any{"temperature": 19.5}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeAuth{})
	products, err := c.Products(context.Background())
	if err != nil {
		t.Fatalf("Products() error = %v", err)
	}
	if len(products) != 1 || products[0].Name() != "Heating" {
		t.Errorf("products = %+v", products)
	}
}

func TestClientRefreshesOnceForConcurrentUnauthorized(t *testing.T) {
	var unauthorized atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "fresh" {
			unauthorized.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	auth := &fakeAuth{release: make(chan struct{})}
	c := NewClient(srv.URL, auth)

	const callers = 5
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.Products(context.Background())
		}(i)
	}

	deadline := time.Now().Add(5 * time.Second)
	for unauthorized.Load() < callers && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond) // let every caller reach the refresh
	close(auth.release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("caller %d error = %v", i, err)
		}
	}
	if n := auth.refreshes.Load(); n != 1 {
		t.Errorf("refreshes = %d, want 1", n)
	}
}

func TestClientUnauthorizedAfterRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeAuth{})
	if _, err := c.Products(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Products() error = %v, want ErrUnauthorized", err)
	}
}

func TestClientSetState(t *testing.T) {
	var got map[string]any
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, &fakeAuth{})
	if err := c.SetState(context.Background(), TypeHeating, "p1", map[string]any{"target": 22.0}); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
	if path != "/nodes/heating/p1" {
		t.Errorf("path = %q", path)
	}
	if got["target"] != 22.0 {
		t.Errorf("body = %v", got)
	}
}

func TestSessionAuthRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if r.URL.Path != "/cognito/refresh-token" || req["refreshToken"] != "r1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"token":"t2"}`))
	}))
	defer srv.Close()

	var persisted Session
	a := NewSessionAuth(srv.URL, Session{Token: "t1", RefreshToken: "r1"})
	a.OnRefresh = func(s Session) { persisted = s }

	tok, err := a.Refresh(context.Background())
	if err != nil || tok != "t2" {
		t.Fatalf("Refresh() = %q, %v", tok, err)
	}
	if persisted.RefreshToken != "r1" {
		t.Errorf("refresh token not carried forward: %+v", persisted)
	}
	if cur, _ := a.Token(context.Background()); cur != "t2" {
		t.Errorf("Token() = %q", cur)
	}
}

func TestMemoryBackendSetState(t *testing.T) {
	ctx := context.Background()
	m := NewDemoBackend()
	products, _ := m.Products(ctx)

	if err := m.SetState(ctx, TypeHeating, products[0].ID, map[string]any{"target": 23.0}); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
	after, _ := m.Products(ctx)
	if after[0].State["target"] != 23.0 {
		t.Errorf("target = %v", after[0].State["target"])
	}
	if products[0].State["target"] == 23.0 {
		t.Error("earlier read aliased backend state")
	}
}
