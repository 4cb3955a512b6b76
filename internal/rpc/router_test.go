package rpc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"tidepool/internal/mstdn"
	"tidepool/internal/session"
)

type fakeServer struct {
	*httptest.Server
	verifyCode  int
	verifyCalls atomic.Int64
	appCalls    atomic.Int64
	homeCalls   atomic.Int64
	lastHomeURL atomic.Value
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{verifyCode: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/accounts/verify_credentials", func(w http.ResponseWriter, r *http.Request) {
		fs.verifyCalls.Add(1)
		if fs.verifyCode != http.StatusOK {
			w.WriteHeader(fs.verifyCode)
			_, _ = w.Write([]byte(`{"error":"invalid token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"1","acct":"ari@far.example","username":"ari","display_name":"Ari"}`))
	})
	mux.HandleFunc("/api/v1/apps", func(w http.ResponseWriter, r *http.Request) {
		fs.appCalls.Add(1)
		_, _ = w.Write([]byte(`{"id":"9","client_id":"cid","client_secret":"sec"}`))
	})
	mux.HandleFunc("/api/v1/timelines/home", func(w http.ResponseWriter, r *http.Request) {
		fs.homeCalls.Add(1)
		fs.lastHomeURL.Store(r.URL.String())
		_, _ = w.Write([]byte(`[{"id":"3"},{"id":"2"}]`))
	})
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"minted","token_type":"Bearer"}`))
	})
	mux.HandleFunc("/api/v1/accounts/lookup", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("acct") != "ari" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Record not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"1","acct":"ari","username":"ari"}`))
	})
	fs.Server = httptest.NewServer(mux)
	t.Cleanup(fs.Close)
	return fs
}

func newTestRouter(fs *fakeServer, token string) (*Router, *session.MemStore) {
	store := session.NewMemStore(token)
	r := NewRouter(mstdn.NewClient(), mstdn.NewInstance(fs.URL), store, AppData{
		ClientName:  "tidepool",
		RedirectURI: "urn:ietf:wg:oauth:2.0:oob",
		Scopes:      "read",
	})
	return r, store
}

func TestAuthorizedAccountAnonymous(t *testing.T) {
	fs := newFakeServer(t)
	r, _ := newTestRouter(fs, "")
	acct, err := r.AuthorizedAccount(context.Background())
	if err != nil || acct != nil {
		t.Fatalf("expected nil account without error, got %v / %v", acct, err)
	}
	if fs.verifyCalls.Load() != 0 {
		t.Fatal("anonymous probe must not hit the network")
	}
}

func TestAuthorizedAccountClearsInvalidToken(t *testing.T) {
	fs := newFakeServer(t)
	fs.verifyCode = http.StatusUnauthorized
	r, store := newTestRouter(fs, "stale")
	ctx := context.Background()

	acct, err := r.AuthorizedAccount(ctx)
	if err != nil || acct != nil {
		t.Fatalf("credential-invalid probe must recover to anonymous, got %v / %v", acct, err)
	}
	if tok, _ := store.Token(ctx); tok != "" {
		t.Fatalf("token not cleared: %q", tok)
	}

	// The next auth-required call short-circuits with no network round-trip.
	_, err = r.HomeTimeline(ctx, HomeTimelineParams{Limit: 50})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if fs.homeCalls.Load() != 0 {
		t.Fatal("short-circuited call issued a request")
	}
}

func TestAuthorizedAccountPropagatesOtherErrors(t *testing.T) {
	fs := newFakeServer(t)
	fs.verifyCode = http.StatusInternalServerError
	r, store := newTestRouter(fs, "tok")
	ctx := context.Background()

	_, err := r.AuthorizedAccount(ctx)
	var ae *mstdn.APIError
	if !errors.As(err, &ae) || ae.Kind != mstdn.KindOtherHTTP {
		t.Fatalf("expected KindOtherHTTP, got %v", err)
	}
	if tok, _ := store.Token(ctx); tok != "tok" {
		t.Fatal("token must survive non-credential errors")
	}
}

func TestHomeTimelineSendsCursorParams(t *testing.T) {
	fs := newFakeServer(t)
	r, _ := newTestRouter(fs, "tok")
	out, err := r.HomeTimeline(context.Background(), HomeTimelineParams{Limit: 50, MaxID: "100"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].ID != "3" {
		t.Fatalf("decoded statuses = %+v", out)
	}
	u, _ := fs.lastHomeURL.Load().(string)
	if !strings.Contains(u, "limit=50") || !strings.Contains(u, "max_id=100") {
		t.Fatalf("request url = %q", u)
	}
}

func TestInputValidationFailsBeforeDispatch(t *testing.T) {
	fs := newFakeServer(t)
	r, _ := newTestRouter(fs, "tok")
	ctx := context.Background()

	if _, err := r.HomeTimeline(ctx, HomeTimelineParams{Limit: 0}); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := r.AccountStatuses(ctx, AccountStatusesParams{}); !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if fs.homeCalls.Load() != 0 {
		t.Fatal("validation failure issued a request")
	}
}

func TestLoginURLRegistersAppOnce(t *testing.T) {
	fs := newFakeServer(t)
	r, _ := newTestRouter(fs, "")
	ctx := context.Background()

	u1, err := r.LoginURL(ctx)
	if err != nil {
		t.Fatal(err)
	}
	u2, err := r.LoginURL(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if u1 != u2 {
		t.Fatalf("login urls differ: %q vs %q", u1, u2)
	}
	if fs.appCalls.Load() != 1 {
		t.Fatalf("app registered %d times", fs.appCalls.Load())
	}
	if !strings.Contains(u1, "client_id=cid") || !strings.Contains(u1, "response_type=code") {
		t.Fatalf("authorize url = %q", u1)
	}
}

func TestExchangeCodeStoresToken(t *testing.T) {
	fs := newFakeServer(t)
	r, store := newTestRouter(fs, "")
	ctx := context.Background()

	if err := r.ExchangeCode(ctx, "abc"); err != nil {
		t.Fatal(err)
	}
	if tok, _ := store.Token(ctx); tok != "minted" {
		t.Fatalf("stored token = %q", tok)
	}
}

func TestAccountLookupNotFound(t *testing.T) {
	fs := newFakeServer(t)
	r, _ := newTestRouter(fs, "")
	ctx := context.Background()

	if _, err := r.AccountLookup(ctx, "nobody"); !mstdn.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
	acct, err := r.AccountLookup(ctx, "ari")
	if err != nil || acct.ID != "1" {
		t.Fatalf("lookup = %+v / %v", acct, err)
	}
}
