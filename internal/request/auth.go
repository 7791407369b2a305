package request

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/google"
)

// Provider supplies authentication headers for outgoing requests.
type Provider interface {
	// Headers returns the headers to add to a request.
	Headers(ctx context.Context) (map[string]string, error)
	// OnUnauthorized is called after a 401. Returning true retries the
	// request once with fresh headers.
	OnUnauthorized(ctx context.Context, resp *http.Response) (retry bool, err error)
}

// NoAuth adds nothing.
type NoAuth struct{}

func (NoAuth) Headers(context.Context) (map[string]string, error) { return nil, nil }

func (NoAuth) OnUnauthorized(context.Context, *http.Response) (bool, error) { return false, nil }

// Bearer sends "Authorization: Bearer <token>".
type Bearer struct {
	Token string
}

func (p *Bearer) Headers(context.Context) (map[string]string, error) {
	if p.Token == "" {
		return nil, nil
	}
	return map[string]string{"Authorization": "Bearer " + p.Token}, nil
}

func (p *Bearer) OnUnauthorized(context.Context, *http.Response) (bool, error) { return false, nil }

// APIKey sends the token in a custom header, X-API-Key unless Header is set.
type APIKey struct {
	Token  string
	Header string
}

func (p *APIKey) Headers(context.Context) (map[string]string, error) {
	if p.Token == "" {
		return nil, nil
	}
	name := p.Header
	if name == "" {
		name = "X-API-Key"
	}
	return map[string]string{name: p.Token}, nil
}

func (p *APIKey) OnUnauthorized(context.Context, *http.Response) (bool, error) { return false, nil }

// Basic sends HTTP basic credentials.
type Basic struct {
	Username string
	Password string
}

func (p *Basic) Headers(context.Context) (map[string]string, error) {
	if p.Username == "" && p.Password == "" {
		return nil, nil
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(p.Username + ":" + p.Password))
	return map[string]string{"Authorization": "Basic " + encoded}, nil
}

func (p *Basic) OnUnauthorized(context.Context, *http.Response) (bool, error) { return false, nil }

// TokenSource sends bearer tokens obtained from an oauth2.TokenSource. The
// source is rebuilt by New after a 401 when New is set.
type TokenSource struct {
	New func(ctx context.Context) (oauth2.TokenSource, error)

	mu  sync.Mutex
	src oauth2.TokenSource
}

// StaticTokenSource wraps a ready-made oauth2.TokenSource.
func StaticTokenSource(src oauth2.TokenSource) *TokenSource {
	return &TokenSource{src: src}
}

// ClientCredentials fetches tokens with the OAuth2 client_credentials grant.
func ClientCredentials(cfg clientcredentials.Config) *TokenSource {
	return &TokenSource{New: func(ctx context.Context) (oauth2.TokenSource, error) {
		return cfg.TokenSource(context.WithoutCancel(ctx)), nil
	}}
}

// GoogleServiceAccount signs tokens with a service account key file. Scopes
// default to cloud-platform.
func GoogleServiceAccount(keyFile string, scopes ...string) *TokenSource {
	if len(scopes) == 0 {
		scopes = []string{"https://www.googleapis.com/auth/cloud-platform"}
	}
	return &TokenSource{New: func(ctx context.Context) (oauth2.TokenSource, error) {
		data, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("request: reading service account key %s: %w", keyFile, err)
		}
		creds, err := google.CredentialsFromJSON(context.WithoutCancel(ctx), data, scopes...)
		if err != nil {
			return nil, fmt.Errorf("request: parsing service account key: %w", err)
		}
		return creds.TokenSource, nil
	}}
}

func (p *TokenSource) Headers(ctx context.Context) (map[string]string, error) {
	src, err := p.source(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("request: fetching token: %w", err)
	}
	return map[string]string{"Authorization": tok.Type() + " " + tok.AccessToken}, nil
}

func (p *TokenSource) OnUnauthorized(ctx context.Context, _ *http.Response) (bool, error) {
	if p.New == nil {
		return false, nil
	}
	p.mu.Lock()
	p.src = nil
	p.mu.Unlock()
	if _, err := p.Headers(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (p *TokenSource) source(ctx context.Context) (oauth2.TokenSource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.src != nil {
		return p.src, nil
	}
	if p.New == nil {
		return nil, fmt.Errorf("request: token source not configured")
	}
	src, err := p.New(ctx)
	if err != nil {
		return nil, err
	}
	p.src = oauth2.ReuseTokenSource(nil, src)
	return p.src, nil
}

// NewProvider builds a Provider from a stored credential.
func NewProvider(cred Credential) (Provider, error) {
	switch cred.Type {
	case "", "none":
		return NoAuth{}, nil
	case "bearer":
		return &Bearer{Token: cred.Token}, nil
	case "api_key":
		return &APIKey{Token: cred.Token, Header: cred.Header}, nil
	case "basic":
		return &Basic{Username: cred.Username, Password: cred.Password}, nil
	case "client_credentials":
		if cred.TokenURL == "" {
			return nil, fmt.Errorf("request: client_credentials needs token_url")
		}
		return ClientCredentials(clientcredentials.Config{
			ClientID:     cred.ClientID,
			ClientSecret: cred.ClientSecret,
			TokenURL:     cred.TokenURL,
			Scopes:       cred.Scopes,
		}), nil
	case "google_service_account":
		if cred.KeyFile == "" {
			return nil, fmt.Errorf("request: google_service_account needs key_file")
		}
		return GoogleServiceAccount(cred.KeyFile, cred.Scopes...), nil
	default:
		return nil, fmt.Errorf("request: unknown auth type %q", cred.Type)
	}
}
