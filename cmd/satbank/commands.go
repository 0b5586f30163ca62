package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	bank "github.com/satbank/satbank/pkg"
)

/*
	These commands are convenience CLI tools that operate on a
	running SatBank by calling the admin REST API.
*/

type SubCommandArgs struct {
	// override the admin API base URL, e.g. http://localhost:8081/
	RemoteAdminServer string
}

// Reconcile asks a running SatBank to reconcile confirmed deposits
// for one account. Crediting is idempotent, so running this against
// an account the sweeper already visited is harmless.
func Reconcile(foreignID string, c bank.Config, s SubCommandArgs) error {
	url, err := adminAPIURL(c, s, fmt.Sprintf("/account/%s/reconcile", foreignID))
	if err != nil {
		return err
	}

	fmt.Println("Calling", url)
	return postURL(url, "")
}

// work out the remote admin URL from args or config and return
// a complete path with our best guess
func adminAPIURL(c bank.Config, s SubCommandArgs, path string) (string, error) {
	base := ""
	if s.RemoteAdminServer != "" {
		base = s.RemoteAdminServer
	} else {
		host := c.WebAPI.AdminBind
		if host == "" {
			host = "localhost"
		}
		base = fmt.Sprintf("http://%s:%s/", host, c.WebAPI.AdminPort)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	p, err := url.Parse(path)
	if err != nil {
		return "", err
	}

	return u.ResolveReference(p).String(), nil
}

// post a command to a remote SatBank admin API
func postURL(url string, body interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to serialize request body: %v", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send HTTP request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected response status code: %d", resp.StatusCode)
	}

	return nil
}
