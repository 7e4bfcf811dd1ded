package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// fastClient builds a client against srv with a near-zero backoff so
// retry tests run instantly.
func fastClient(t *testing.T, srv *httptest.Server, token string) *Client {
	t.Helper()
	return NewClient(StaticTokenSource(token), nil, Options{
		BaseURL:   srv.URL,
		RetryBase: time.Millisecond,
	})
}

func TestReadRange_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `{"range":"Tasks!A1:B2","values":[["Task","Due"],["Book venue",2026]]}`)
	}))
	defer srv.Close()

	grid, err := fastClient(t, srv, "tok").ReadRange(context.Background(), "sheet-1", "Tasks!A1:B2")
	if err != nil {
		t.Fatalf("ReadRange() error = %v", err)
	}
	if len(grid) != 2 {
		t.Fatalf("grid = %+v", grid)
	}
	// Numeric cells are coerced to strings.
	if grid[1][1] != "2026" {
		t.Errorf("grid[1][1] = %q, want \"2026\"", grid[1][1])
	}
}

func TestDo_RetriesRateLimitThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `rate limit exceeded`)
			return
		}
		fmt.Fprint(w, `{"values":[["ok"]]}`)
	}))
	defer srv.Close()

	grid, err := fastClient(t, srv, "tok").ReadRange(context.Background(), "s", "A1")
	if err != nil {
		t.Fatalf("ReadRange() error = %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
	if len(grid) != 1 || grid[0][0] != "ok" {
		t.Errorf("grid = %+v", grid)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := fastClient(t, srv, "tok").ReadRange(context.Background(), "s", "A1")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3 (initial + 2 retries)", got)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindRateLimited {
		t.Errorf("error = %v, want rate_limited APIError", err)
	}
}

func TestDo_NonRetryableFailsImmediately(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind ErrorKind
	}{
		{"permission denied", 403, "The caller does not have permission", KindPermissionDenied},
		{"quota exceeded", 403, "Quota exceeded for requests per minute", KindQuotaExceeded},
		{"not found", 404, "Requested entity was not found", KindNotFound},
		{"server error", 500, "Internal error", KindServerError},
		{"bad request", 400, "Unable to parse range", KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := fastClient(t, srv, "tok").ReadRange(context.Background(), "s", "A1")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want APIError", err)
			}
			if apiErr.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", apiErr.Kind, tt.wantKind)
			}
			if got := calls.Load(); got != 1 {
				t.Errorf("server saw %d calls, want 1 (no retry)", got)
			}
		})
	}
}

func TestDo_Unauthenticated(t *testing.T) {
	t.Run("401 response", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		_, err := fastClient(t, srv, "tok").ReadRange(context.Background(), "s", "A1")
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("error = %v, want ErrUnauthenticated", err)
		}
		if got := calls.Load(); got != 1 {
			t.Errorf("server saw %d calls, want 1", got)
		}
	})

	t.Run("empty token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("request reached the server without a token")
		}))
		defer srv.Close()

		_, err := fastClient(t, srv, "").ReadRange(context.Background(), "s", "A1")
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("error = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("token source failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer srv.Close()

		tokens := TokenSourceFunc(func(ctx context.Context) (string, error) {
			return "", errors.New("keychain locked")
		})
		c := NewClient(tokens, nil, Options{BaseURL: srv.URL, RetryBase: time.Millisecond})
		_, err := c.ReadRange(context.Background(), "s", "A1")
		if !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("error = %v, want ErrUnauthenticated", err)
		}
	})
}

func TestDo_TransportErrorsRetry(t *testing.T) {
	// Server closed before the call so every attempt fails at dial time.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := fastClient(t, srv, "tok").ReadRange(context.Background(), "s", "A1")

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Kind != KindTransport {
		t.Fatalf("error = %v, want transport APIError", err)
	}
}

func TestAppendRows_Request(t *testing.T) {
	var gotPath, gotQuery, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotMethod = r.Method
	}))
	defer srv.Close()

	err := fastClient(t, srv, "tok").AppendRows(context.Background(), "sheet-1",
		"'Activity Log'!A:C", Grid{{"2026-03-01T00:00:00Z", "note", "Extension"}})
	if err != nil {
		t.Fatalf("AppendRows() error = %v", err)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %q", gotMethod)
	}
	if gotPath != "/sheet-1/values/'Activity Log'!A:C:append" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "valueInputOption=USER_ENTERED" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"properties": {"title": "Spring Gala"},
			"sheets": [
				{"properties": {"title": "README"}},
				{"properties": {"title": "Tasks"}}
			]
		}`)
	}))
	defer srv.Close()

	md, err := fastClient(t, srv, "tok").Metadata(context.Background(), "sheet-1")
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	if md.Title != "Spring Gala" {
		t.Errorf("Title = %q", md.Title)
	}
	if len(md.TabNames) != 2 || md.TabNames[0] != "README" {
		t.Errorf("TabNames = %v", md.TabNames)
	}
}

func TestLinearBackOff(t *testing.T) {
	l := &linearBackOff{base: time.Second}
	if got := l.NextBackOff(); got != time.Second {
		t.Errorf("first wait = %v, want 1s", got)
	}
	if got := l.NextBackOff(); got != 2*time.Second {
		t.Errorf("second wait = %v, want 2s", got)
	}
	l.Reset()
	if got := l.NextBackOff(); got != time.Second {
		t.Errorf("wait after reset = %v, want 1s", got)
	}
}

func TestQuoteTab(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Budget", "'Budget'"},
		{"Event Overview", "'Event Overview'"},
		{"Bob's List", "'Bob''s List'"},
		{"it's Pat's", "'it''s Pat''s'"},
	}
	for _, tt := range tests {
		if got := QuoteTab(tt.name); got != tt.want {
			t.Errorf("QuoteTab(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
