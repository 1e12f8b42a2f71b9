package services

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrUserExists     = errors.New("username already registered")
	ErrBadCredentials = errors.New("invalid username or password")
)

// EjabberdClient talks to the ejabberd admin API on the internal
// network. Ejabberd runs with a self-signed certificate inside the
// compose network, hence the skipped TLS verification.
type EjabberdClient struct {
	baseURL string
	http    *http.Client
}

func NewEjabberdClient(baseURL string) *EjabberdClient {
	return &EjabberdClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// Register creates the XMPP account. Returns ErrUserExists when the
// username is taken.
func (c *EjabberdClient) Register(username, domain, password string) error {
	status, body, err := c.post("/register", map[string]string{
		"user": username, "host": domain, "password": password,
	})
	if err != nil {
		return fmt.Errorf("ejabberd register: %w", err)
	}
	if status == http.StatusConflict ||
		(status == http.StatusOK && strings.Contains(strings.ToLower(body), "already registered")) {
		return ErrUserExists
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("ejabberd register returned %d: %s", status, body)
	}
	return nil
}

// CheckPassword verifies XMPP credentials. The admin API answers plain
// text "0" for a match, "1" otherwise.
func (c *EjabberdClient) CheckPassword(username, domain, password string) error {
	status, body, err := c.post("/check_password", map[string]string{
		"user": username, "host": domain, "password": password,
	})
	if err != nil {
		return fmt.Errorf("ejabberd check_password: %w", err)
	}
	if status != http.StatusOK || strings.TrimSpace(body) != "0" {
		return ErrBadCredentials
	}
	return nil
}

func (c *EjabberdClient) post(path string, payload map[string]string) (int, string, error) {
	raw, _ := json.Marshal(payload)
	resp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, string(body), nil
}
