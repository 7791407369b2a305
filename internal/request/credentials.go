package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// EnvAuthToken names the variable consulted for a bearer token when none is
// given explicitly.
const EnvAuthToken = "CLITE_AUTH_TOKEN"

// EnvCredentialsFile overrides the location of the credentials file.
const EnvCredentialsFile = "CLITE_CREDENTIALS_FILE"

// Credentials is the on-disk store of per-host authentication.
type Credentials struct {
	Version int                   `json:"version"`
	Hosts   map[string]Credential `json:"hosts"`
}

// Credential describes how to authenticate against one host. Type is one of
// none, bearer, api_key, basic, client_credentials, google_service_account.
type Credential struct {
	Type         string   `json:"type"`
	Token        string   `json:"token,omitempty"`
	Header       string   `json:"header,omitempty"`
	Username     string   `json:"username,omitempty"`
	Password     string   `json:"password,omitempty"`
	ClientID     string   `json:"client_id,omitempty"`
	ClientSecret string   `json:"client_secret,omitempty"`
	TokenURL     string   `json:"token_url,omitempty"`
	KeyFile      string   `json:"key_file,omitempty"`
	Scopes       []string `json:"scopes,omitempty"`
}

// DefaultCredentialsPath returns $CLITE_CREDENTIALS_FILE or
// ~/.clite/credentials.json.
func DefaultCredentialsPath() string {
	if p := os.Getenv(EnvCredentialsFile); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".clite", "credentials.json")
}

// LoadCredentials reads a credentials file. A missing file yields an empty
// store.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Credentials{Version: 1, Hosts: map[string]Credential{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	var c Credentials
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("request: parsing credentials %s: %w", path, err)
	}
	if c.Hosts == nil {
		c.Hosts = map[string]Credential{}
	}
	return &c, nil
}

// SaveCredentials writes the store with owner-only permissions.
func SaveCredentials(path string, c *Credentials) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("request: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// SetToken stores a bearer token for host.
func (c *Credentials) SetToken(host, token string) {
	if c.Hosts == nil {
		c.Hosts = map[string]Credential{}
	}
	c.Hosts[host] = Credential{Type: "bearer", Token: token}
}

// Providers builds a Provider for every host in the store.
func (c *Credentials) Providers() (map[string]Provider, error) {
	out := make(map[string]Provider, len(c.Hosts))
	for host, cred := range c.Hosts {
		p, err := NewProvider(cred)
		if err != nil {
			return nil, fmt.Errorf("host %s: %w", host, err)
		}
		out[host] = p
	}
	return out, nil
}

// LookupToken resolves a bearer token: the explicit flag value, then
// $CLITE_AUTH_TOKEN, then a bearer entry for host in the credentials file.
// It returns "" when nothing is found.
func LookupToken(flagToken, host string) string {
	if flagToken != "" {
		return flagToken
	}
	if t := os.Getenv(EnvAuthToken); t != "" {
		return t
	}
	path := DefaultCredentialsPath()
	if path == "" || host == "" {
		return ""
	}
	creds, err := LoadCredentials(path)
	if err != nil {
		return ""
	}
	if cred, ok := creds.Hosts[host]; ok && cred.Type == "bearer" {
		return cred.Token
	}
	return ""
}
