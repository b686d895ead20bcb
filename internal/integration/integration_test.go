package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMailerDemoMode(t *testing.T) {
	m := NewMailer("", "Agentverse <demo@example.com>", http.DefaultClient)

	if !m.Demo() {
		t.Fatal("expected demo mode without api key")
	}

	receipt, err := m.Send(context.Background(), "to@example.com", "hi", "body")
	if err != nil {
		t.Fatalf("Send in demo mode: %v", err)
	}
	if !receipt.Simulated || receipt.ID == "" {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
}

func TestMailerSend(t *testing.T) {
	var got sendEmailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer re-key" {
			t.Errorf("authorization header = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if _, err := w.Write([]byte(`{"id":"email-123"}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	m := NewMailer("re-key", "Agentverse <noreply@example.com>", srv.Client())
	m.baseURL = srv.URL

	receipt, err := m.Send(context.Background(), "to@example.com", "Reminder", "Do the thing")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if receipt.ID != "email-123" || receipt.Simulated {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if len(got.To) != 1 || got.To[0] != "to@example.com" || got.Subject != "Reminder" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestMailerSendUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"invalid from address"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	m := NewMailer("re-key", "bad", srv.Client())
	m.baseURL = srv.URL

	if _, err := m.Send(context.Background(), "to@example.com", "s", "b"); err == nil {
		t.Error("expected error on 422 response")
	}
}

func TestWeatherDemoMode(t *testing.T) {
	c := NewWeatherClient("", http.DefaultClient)

	report, err := c.Current(context.Background(), "Bengaluru")
	if err != nil {
		t.Fatalf("Current in demo mode: %v", err)
	}
	if !report.Simulated || report.City != "Bengaluru" || report.Description == "" {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestWeatherCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "Pune" {
			t.Errorf("city query = %q", q)
		}
		if units := r.URL.Query().Get("units"); units != "metric" {
			t.Errorf("units query = %q", units)
		}
		body := `{"name":"Pune","weather":[{"description":"haze"}],"main":{"temp":29.4,"feels_like":31.0,"humidity":62},"wind":{"speed":2.5}}`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	c := NewWeatherClient("ow-key", srv.Client())
	c.baseURL = srv.URL

	report, err := c.Current(context.Background(), "Pune")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if report.City != "Pune" || report.Description != "haze" || report.TempC != 29.4 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Simulated {
		t.Error("live report must not be marked simulated")
	}
}

func TestWeatherCityNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"cod":"404","message":"city not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewWeatherClient("ow-key", srv.Client())
	c.baseURL = srv.URL

	_, err := c.Current(context.Background(), "Nowhereville")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestNewsDemoMode(t *testing.T) {
	c := NewNewsClient("", http.DefaultClient)

	articles, err := c.Headlines(context.Background(), "ai", 5)
	if err != nil {
		t.Fatalf("Headlines in demo mode: %v", err)
	}
	if len(articles) == 0 || articles[0].Title == "" {
		t.Fatalf("unexpected articles: %+v", articles)
	}
}

func TestNewsHeadlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if q := r.URL.Query().Get("q"); q != "space" {
			t.Errorf("topic query = %q", q)
		}
		if size := r.URL.Query().Get("pageSize"); size != "2" {
			t.Errorf("pageSize query = %q", size)
		}
		body := `{"status":"ok","articles":[{"title":"Launch succeeds","description":"Up it goes","url":"https://example.com/launch","source":{"name":"Wire"}}]}`
		if _, err := w.Write([]byte(body)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	c := NewNewsClient("news-key", srv.Client())
	c.baseURL = srv.URL

	articles, err := c.Headlines(context.Background(), "space", 2)
	if err != nil {
		t.Fatalf("Headlines: %v", err)
	}
	if len(articles) != 1 || articles[0].Source != "Wire" {
		t.Fatalf("unexpected articles: %+v", articles)
	}
}

func TestNewsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		if _, err := w.Write([]byte(`{"status":"error","message":"apiKey invalid"}`)); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	c := NewNewsClient("bad-key", srv.Client())
	c.baseURL = srv.URL

	if _, err := c.Headlines(context.Background(), "space", 2); err == nil {
		t.Error("expected error on 401 response")
	}
}
