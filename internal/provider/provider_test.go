package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/config"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/metrics"
)

func userMessage(text string) []domain.Message {
	return []domain.Message{{Role: domain.RoleUser, Content: text}}
}

func TestNoCredentialsSelectsMock(t *testing.T) {
	adapter := New(config.ProviderConfig{}, metrics.New())

	if adapter.Name() != "mock" {
		t.Fatalf("provider = %q, want mock", adapter.Name())
	}

	res := adapter.Chat(context.Background(), userMessage("hello there"))
	if res.Provider != "mock" {
		t.Errorf("result provider = %q, want mock", res.Provider)
	}
	if res.Degraded {
		t.Error("mock as the selected provider must not report degraded")
	}
	if res.Content == "" {
		t.Error("expected non-empty mock content")
	}
}

func TestMockQuizAndScheduleAreParseable(t *testing.T) {
	adapter := New(config.ProviderConfig{}, metrics.New())

	quiz := adapter.GenerateQuiz(context.Background(), "astronomy", 3, "easy")
	if quiz.Provider != "mock" {
		t.Fatalf("quiz provider = %q, want mock", quiz.Provider)
	}
	var quizDoc struct {
		Questions []struct {
			Question string   `json:"question"`
			Options  []string `json:"options"`
			Answer   string   `json:"answer"`
		} `json:"questions"`
	}
	if err := json.Unmarshal([]byte(quiz.Content), &quizDoc); err != nil {
		t.Fatalf("mock quiz is not valid JSON: %v", err)
	}
	if len(quizDoc.Questions) == 0 || len(quizDoc.Questions[0].Options) != 4 {
		t.Fatalf("unexpected mock quiz shape: %+v", quizDoc)
	}

	sched := adapter.GenerateSchedule(context.Background(), "algebra", 3, 2)
	var schedDoc domain.StudySchedule
	if err := json.Unmarshal([]byte(sched.Content), &schedDoc); err != nil {
		t.Fatalf("mock schedule is not valid JSON: %v", err)
	}
	if len(schedDoc.Schedule) == 0 {
		t.Fatal("mock schedule has no days")
	}
}

func completionBody(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestChatUsesConfiguredProvider(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(completionBody("live answer"))); err != nil {
			t.Errorf("write response: %v", err)
		}
	}))
	defer srv.Close()

	adapter := &Adapter{
		primary: NewOpenAICompatible("groq", srv.URL, "test-model", "sk-test", srv.Client()),
		mock:    &Mock{},
		metrics: metrics.New(),
	}

	res := adapter.Chat(context.Background(), userMessage("hi"))
	if res.Content != "live answer" {
		t.Errorf("content = %q, want %q", res.Content, "live answer")
	}
	if res.Provider != "groq" || res.Degraded {
		t.Errorf("unexpected provenance: %+v", res)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("authorization header = %q", gotAuth)
	}
}

func TestUpstreamFailureDegradesToMock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	adapter := &Adapter{
		primary: NewOpenAICompatible("groq", srv.URL, "test-model", "sk-test", srv.Client()),
		mock:    &Mock{},
		metrics: metrics.New(),
	}

	res := adapter.Chat(context.Background(), userMessage("hi"))
	if res.Provider != "mock" {
		t.Errorf("provider = %q, want mock", res.Provider)
	}
	if !res.Degraded {
		t.Error("expected degraded result after upstream failure")
	}
	if res.Content == "" {
		t.Error("expected mock content after upstream failure")
	}
}

func TestCreateChatCompletionErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "no choices", body: `{"choices":[]}`, code: http.StatusOK},
		{name: "api error body", body: `{"error":{"message":"bad model"}}`, code: http.StatusOK},
		{name: "server error", body: `oops`, code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
				if _, err := w.Write([]byte(tt.body)); err != nil {
					t.Errorf("write response: %v", err)
				}
			}))
			defer srv.Close()

			p := NewOpenAICompatible("test", srv.URL, "m", "k", srv.Client())
			if _, err := p.CreateChatCompletion(context.Background(), userMessage("hi")); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: `{"a":1}`, want: `{"a":1}`},
		{name: "fenced", in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "fenced with language", in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "single line fence", in: "```{\"a\":1}```", want: `{"a":1}`},
		{name: "surrounding whitespace", in: "  \n```json\n{\"a\":1}\n```\n", want: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFence(tt.in); got != tt.want {
				t.Errorf("StripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
