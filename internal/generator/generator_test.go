package generator

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/metrics"
	"github.com/chetanchannaveer-rgb/Agentverse/internal/provider"
)

type stubChatter struct {
	content string
}

func (s *stubChatter) Chat(ctx context.Context, messages []domain.Message) *provider.Result {
	return &provider.Result{Content: s.content, Provider: "mock"}
}

func newTestGenerator(content string) (*Generator, *Cache) {
	cache := NewCache(time.Minute)
	return New(&stubChatter{content: content}, cache, metrics.New()), cache
}

func TestGenerateParsesModelOutput(t *testing.T) {
	chat := "Here is your project:\n```json\n" +
		`{"name": " Todo App ", "description": "a todo list", "files": [` +
		`{"path": "index.html", "content": "<html></html>", "language": "html"},` +
		`{"path": "app.js", "content": "console.log(1)"}` +
		`], "instructions": "Open index.html"}` + "\n```"

	gen, cache := newTestGenerator(chat)
	project := gen.Generate(context.Background(), "a todo list")

	if project.ID == "" {
		t.Fatal("expected generated project to have an id")
	}
	if project.CreatedAt.IsZero() {
		t.Error("expected createdAt to be set")
	}
	if project.Name != "Todo App" {
		t.Errorf("expected trimmed name %q, got %q", "Todo App", project.Name)
	}
	if len(project.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(project.Files))
	}
	if project.Files[1].Language != "javascript" {
		t.Errorf("expected language filled from extension, got %q", project.Files[1].Language)
	}
	if project.Instructions != "Open index.html" {
		t.Errorf("unexpected instructions %q", project.Instructions)
	}
	if _, ok := cache.Get(project.ID); !ok {
		t.Error("generated project should be cached for download")
	}
}

func TestGenerateFallsBackOnUnusableOutput(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"prose", "I cannot generate a project right now."},
		{"truncated json", `{"name": "App", "files": [{"path": "a.js"`},
		{"missing name", `{"name": "  ", "files": [{"path": "a.js", "content": ""}]}`},
		{"no files", `{"name": "App", "files": []}`},
		{"file without path", `{"name": "App", "files": [{"path": " ", "content": "x"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen, _ := newTestGenerator(tc.content)
			project := gen.Generate(context.Background(), "an app")

			if len(project.Files) != 4 {
				t.Fatalf("expected fallback with exactly 4 files, got %d", len(project.Files))
			}
			want := []string{"index.html", "styles.css", "app.js", "README.md"}
			for i, path := range want {
				if project.Files[i].Path != path {
					t.Errorf("file %d: expected path %q, got %q", i, path, project.Files[i].Path)
				}
				if project.Files[i].Content == "" {
					t.Errorf("file %q has empty content", path)
				}
			}
			if project.ID == "" {
				t.Error("fallback project should still get an id")
			}
			if project.Description != "an app" {
				t.Errorf("fallback should keep the description, got %q", project.Description)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"surrounding prose", `Sure! {"a":1} Hope that helps.`, `{"a":1}`},
		{"no object", "no json here", ""},
		{"only open brace", "{oops", ""},
		{"nested braces", `x {"a":{"b":2}} y`, `{"a":{"b":2}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSONObject(tc.in); got != tc.want {
				t.Errorf("extractJSONObject(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestLanguageForPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"index.html", "html"},
		{"src/App.TSX", "typescript"},
		{"main.py", "python"},
		{"README.md", "markdown"},
		{"Makefile", "text"},
		{"archive.tar.gz", "text"},
	}

	for _, tc := range cases {
		if got := languageForPath(tc.path); got != tc.want {
			t.Errorf("languageForPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestCachePutGet(t *testing.T) {
	cache := NewCache(time.Minute)
	project := &domain.GeneratedProject{ID: "p1", Name: "App"}

	cache.Put(project)

	got, ok := cache.Get("p1")
	if !ok {
		t.Fatal("expected cached project to be found")
	}
	if got.Name != "App" {
		t.Errorf("expected cached project, got %+v", got)
	}
	if _, ok := cache.Get("missing"); ok {
		t.Error("expected miss for unknown id")
	}
}

func TestCacheGetSkipsExpired(t *testing.T) {
	cache := NewCache(-time.Minute)
	cache.Put(&domain.GeneratedProject{ID: "p1"})

	if _, ok := cache.Get("p1"); ok {
		t.Error("expected expired entry to be treated as absent")
	}
	if cache.Len() != 1 {
		t.Errorf("expired entry should remain until swept, len = %d", cache.Len())
	}
}

func TestCacheEvictExpired(t *testing.T) {
	cache := NewCache(time.Minute)
	cache.Put(&domain.GeneratedProject{ID: "p1"})
	cache.Put(&domain.GeneratedProject{ID: "p2"})

	if evicted := cache.evictExpired(time.Now()); evicted != 0 {
		t.Fatalf("nothing should expire yet, evicted %d", evicted)
	}
	if evicted := cache.evictExpired(time.Now().Add(2 * time.Minute)); evicted != 2 {
		t.Fatalf("expected 2 evictions, got %d", evicted)
	}
	if cache.Len() != 0 {
		t.Errorf("expected empty cache after sweep, len = %d", cache.Len())
	}
}

func TestWriteArchive(t *testing.T) {
	project := &domain.GeneratedProject{
		ID:   "p1",
		Name: "App",
		Files: []domain.ProjectFile{
			{Path: "index.html", Content: "<html></html>"},
			{Path: "src/app.js", Content: "console.log(1)"},
			{Path: "../../etc/passwd", Content: "nope"},
		},
		Instructions: "Open index.html",
	}

	var buf bytes.Buffer
	if err := WriteArchive(&buf, project); err != nil {
		t.Fatalf("WriteArchive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}

	entries := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		entries[f.Name] = string(data)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries (traversal path dropped), got %d: %v", len(entries), entries)
	}
	if entries["src/app.js"] != "console.log(1)" {
		t.Errorf("unexpected content for src/app.js: %q", entries["src/app.js"])
	}
	if entries["INSTRUCTIONS.txt"] != "Open index.html\n" {
		t.Errorf("unexpected instructions entry: %q", entries["INSTRUCTIONS.txt"])
	}
}

func TestSanitizeArchivePath(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"index.html", "index.html"},
		{"/abs/path.js", "abs/path.js"},
		{`src\win\file.js`, "src/win/file.js"},
		{"a/./b.txt", "a/b.txt"},
		{"../escape.txt", ""},
		{"a/../../escape.txt", ""},
		{"..", ""},
	}

	for _, tc := range cases {
		if got := sanitizeArchivePath(tc.in); got != tc.want {
			t.Errorf("sanitizeArchivePath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
