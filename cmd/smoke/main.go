package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"time"
)

type step struct {
	name   string
	method string
	path   string
	body   interface{}
	want   int
}

func main() {
	baseURL := os.Getenv("PORTAL_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	email := os.Getenv("SMOKE_EMAIL")
	if email == "" {
		email = fmt.Sprintf("smoke-%d@example.com", time.Now().Unix())
	}

	jar, _ := cookiejar.New(nil)
	client := &http.Client{Jar: jar, Timeout: 30 * time.Second}

	steps := []step{
		{"health", http.MethodGet, "/health", nil, http.StatusOK},
		{"anonymous session", http.MethodGet, "/api/session", nil, http.StatusOK},
		{"register", http.MethodPost, "/api/auth/register", map[string]string{
			"firstName":       "Smoke",
			"lastName":        "Test",
			"email":           email,
			"password":        "Smoke#Test1",
			"confirmPassword": "Smoke#Test1",
		}, http.StatusCreated},
		{"create team", http.MethodPost, "/api/dashboard/team", map[string]interface{}{
			"name":    "Smoke Testers",
			"members": []string{"LOC-0001"},
		}, http.StatusCreated},
		{"pay fee", http.MethodPost, "/api/dashboard/payment", nil, http.StatusOK},
		{"payment status", http.MethodGet, "/api/dashboard/payment", nil, http.StatusOK},
		{"logout", http.MethodPost, "/api/auth/logout", nil, http.StatusOK},
		{"dashboard after logout", http.MethodGet, "/api/dashboard/team", nil, http.StatusUnauthorized},
	}

	failed := 0
	for _, s := range steps {
		status, body, err := run(client, baseURL, s)
		switch {
		case err != nil:
			fmt.Printf("❌ %s: %v\n", s.name, err)
			failed++
		case status != s.want:
			fmt.Printf("❌ %s: status %d, want %d\n   %s\n", s.name, status, s.want, body)
			failed++
		default:
			fmt.Printf("✅ %s (%d)\n", s.name, status)
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d steps failed\n", failed, len(steps))
		os.Exit(1)
	}
	fmt.Println("\nAll smoke steps passed")
}

func run(client *http.Client, baseURL string, s step) (int, string, error) {
	var payload io.Reader = http.NoBody
	if s.body != nil {
		raw, err := json.Marshal(s.body)
		if err != nil {
			return 0, "", err
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(s.method, baseURL+s.path, payload)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), nil
}
