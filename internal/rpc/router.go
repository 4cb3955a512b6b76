package rpc

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"tidepool/internal/logging"
	"tidepool/internal/model"
	"tidepool/internal/mstdn"
	"tidepool/internal/session"
)

// AppData describes this client to the remote instance when registering an
// OAuth application.
type AppData struct {
	ClientName  string
	RedirectURI string
	Scopes      string
	Website     string
}

// Router is the authenticated procedure boundary. It owns the once-registered
// application descriptor instead of reading it from ambient process state.
type Router struct {
	client   *mstdn.Client
	instance mstdn.Instance
	store    session.Store
	app      AppData

	appMu  sync.Mutex
	appReg mstdn.AppRegistration
}

func NewRouter(client *mstdn.Client, instance mstdn.Instance, store session.Store, app AppData) *Router {
	return &Router{client: client, instance: instance, store: store, app: app}
}

// requireAuthorized is the auth middleware: it reads the stored token and
// short-circuits with ErrUnauthorized when absent, before any network call.
func (r *Router) requireAuthorized(ctx context.Context) (string, error) {
	tok, err := r.store.Token(ctx)
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", ErrUnauthorized
	}
	return tok, nil
}

// AuthorizedAccount returns the account bound to the stored token, or nil
// when anonymous. A credential-invalid response from the probe clears the
// token and downgrades to anonymous instead of surfacing the error.
func (r *Router) AuthorizedAccount(ctx context.Context) (*model.Account, error) {
	tok, err := r.store.Token(ctx)
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, nil
	}
	inst := r.instance.WithAuthorizationToken(tok)
	acct, err := mstdn.Send[model.Account](ctx, r.client, mstdn.VerifyCredentials, mstdn.EmptyRequestBody{}, inst)
	if err != nil {
		if mstdn.IsCredentialInvalid(err) {
			_ = r.store.ClearToken(ctx)
			return nil, nil
		}
		return nil, err
	}
	return &acct, nil
}

// appInfo registers the application on first use and caches the descriptor
// for the router's lifetime. Failures are not cached.
func (r *Router) appInfo(ctx context.Context) (mstdn.AppRegistration, error) {
	r.appMu.Lock()
	defer r.appMu.Unlock()
	if r.appReg.ClientID != "" {
		return r.appReg, nil
	}
	reg, err := mstdn.Send[mstdn.AppRegistration](ctx, r.client, mstdn.CreateApp, mstdn.FormDataBody{
		"client_name":   r.app.ClientName,
		"redirect_uris": r.app.RedirectURI,
		"scopes":        r.app.Scopes,
		"website":       r.app.Website,
	}, r.instance)
	if err != nil {
		return reg, err
	}
	r.appReg = reg
	return reg, nil
}

// LoginURL builds the OAuth authorize URL for this client.
func (r *Router) LoginURL(ctx context.Context) (string, error) {
	reg, err := r.appInfo(ctx)
	if err != nil {
		logFailure("login_url_error", err)
		return "", err
	}
	return mstdn.BuildAuthorizeURL(r.instance, map[string]string{
		"response_type": "code",
		"client_id":     reg.ClientID,
		"redirect_uri":  r.app.RedirectURI,
		"scope":         r.app.Scopes,
	}), nil
}

// ExchangeCode trades an OAuth authorization code for a token and stores it.
func (r *Router) ExchangeCode(ctx context.Context, code string) error {
	if code == "" {
		return &ValidationError{Field: "code", Message: "must not be empty"}
	}
	reg, err := r.appInfo(ctx)
	if err != nil {
		logFailure("exchange_code_error", err)
		return err
	}
	tok, err := mstdn.Send[mstdn.Token](ctx, r.client, mstdn.ObtainToken, mstdn.FormDataBody{
		"grant_type":    "authorization_code",
		"code":          code,
		"client_id":     reg.ClientID,
		"client_secret": reg.ClientSecret,
		"redirect_uri":  r.app.RedirectURI,
		"scope":         r.app.Scopes,
	}, r.instance)
	if err != nil {
		logFailure("exchange_code_error", err)
		return err
	}
	return r.store.SetToken(ctx, tok.AccessToken)
}

// AccountStatusesParams is the input of AccountStatuses.
type AccountStatusesParams struct {
	AccountID string
	MaxID     string
	Limit     int
}

func (p AccountStatusesParams) validate() error {
	if p.AccountID == "" {
		return &ValidationError{Field: "accountId", Message: "must not be empty"}
	}
	if p.Limit < 0 || p.Limit > 100 {
		return &ValidationError{Field: "limit", Message: "must be between 0 and 100"}
	}
	return nil
}

// AccountStatuses lists one account's statuses, newest first. The stored
// token is used when present, otherwise the call is anonymous.
func (r *Router) AccountStatuses(ctx context.Context, p AccountStatusesParams) ([]model.Status, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	inst := r.instance
	if tok, err := r.store.Token(ctx); err != nil {
		return nil, err
	} else if tok != "" {
		inst = inst.WithAuthorizationToken(tok)
	}
	return mstdn.Send[[]model.Status](ctx, r.client, mstdn.AccountStatuses(p.AccountID), mstdn.SearchParamsBody{
		"max_id": p.MaxID,
		"limit":  itoaOmitZero(p.Limit),
	}, inst)
}

// HomeTimelineParams is the input of HomeTimeline.
type HomeTimelineParams struct {
	Limit int
	MaxID string
}

func (p HomeTimelineParams) validate() error {
	if p.Limit < 1 || p.Limit > 100 {
		return &ValidationError{Field: "limit", Message: "must be between 1 and 100"}
	}
	return nil
}

// HomeTimeline pages the credentialed home feed. Requires authorization.
func (r *Router) HomeTimeline(ctx context.Context, p HomeTimelineParams) ([]model.Status, error) {
	tok, err := r.requireAuthorized(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return mstdn.Send[[]model.Status](ctx, r.client, mstdn.HomeTimeline, mstdn.SearchParamsBody{
		"max_id": p.MaxID,
		"limit":  strconv.Itoa(p.Limit),
	}, r.instance.WithAuthorizationToken(tok))
}

// AccountLookup resolves an acct handle to an account. A 404 surfaces as a
// not-found kind for the caller's "resource absent" outcome.
func (r *Router) AccountLookup(ctx context.Context, acct string) (*model.Account, error) {
	if acct == "" {
		return nil, &ValidationError{Field: "acct", Message: "must not be empty"}
	}
	a, err := mstdn.Send[model.Account](ctx, r.client, mstdn.LookupAccount, mstdn.SearchParamsBody{"acct": acct}, r.instance)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Status fetches a single status by id.
func (r *Router) Status(ctx context.Context, statusID string) (*model.Status, error) {
	if statusID == "" {
		return nil, &ValidationError{Field: "statusId", Message: "must not be empty"}
	}
	s, err := mstdn.Send[model.Status](ctx, r.client, mstdn.GetStatus(statusID), mstdn.EmptyRequestBody{}, r.instance)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Token exposes the stored credential to collaborators that bind it
// themselves (the streaming client). Never handed to the render layer.
func (r *Router) Token(ctx context.Context) (string, error) {
	return r.store.Token(ctx)
}

func itoaOmitZero(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func logFailure(msg string, err error) {
	fields := map[string]any{"error": err.Error()}
	var ae *mstdn.APIError
	if errors.As(err, &ae) {
		fields["status"] = ae.StatusCode
		fields["body"] = ae.ResponseBody()
	}
	logging.Error(msg, fields)
}
