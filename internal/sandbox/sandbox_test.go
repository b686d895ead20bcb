package sandbox

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestCapWriterUnderLimit(t *testing.T) {
	w := &capWriter{limit: 16}

	n, err := w.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("Write = (%d, %v), want (5, nil)", n, err)
	}
	if w.String() != "hello" || w.truncated {
		t.Errorf("got %q truncated=%v, want %q truncated=false", w.String(), w.truncated, "hello")
	}
}

func TestCapWriterTruncates(t *testing.T) {
	w := &capWriter{limit: 8}

	for i := 0; i < 4; i++ {
		n, err := w.Write([]byte("abcde"))
		if err != nil || n != 5 {
			t.Fatalf("write %d = (%d, %v), want (5, nil)", i, n, err)
		}
	}

	if got := w.String(); got != "abcdeabc" {
		t.Errorf("captured %q, want first 8 bytes", got)
	}
	if !w.truncated {
		t.Error("expected truncated to be set")
	}
}

func TestCapWriterExactLimit(t *testing.T) {
	w := &capWriter{limit: 5}

	if _, err := w.Write([]byte("abcde")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if w.truncated {
		t.Error("filling the buffer exactly should not count as truncation")
	}
	if _, err := w.Write(nil); err != nil {
		t.Fatalf("empty Write: %v", err)
	}
	if w.truncated {
		t.Error("empty write at the limit should not count as truncation")
	}
}

func TestLanguageTableComplete(t *testing.T) {
	if len(languageNames) != len(languages) {
		t.Fatalf("listing order has %d entries, table has %d", len(languageNames), len(languages))
	}
	for _, name := range languageNames {
		spec, ok := languages[name]
		if !ok {
			t.Errorf("language %q listed but not in table", name)
			continue
		}
		if spec.fileName == "" || len(spec.command) == 0 {
			t.Errorf("language %q has incomplete spec %+v", name, spec)
		}
	}
}

func TestLocalRunnerRejectsUnknownLanguage(t *testing.T) {
	runner := NewLocalRunner()

	_, err := runner.Run(context.Background(), Request{Language: "cobol", Code: "x"})
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestDockerRunnerRejectsUnknownLanguage(t *testing.T) {
	runner := &DockerRunner{image: "agentverse-runner:latest"}

	_, err := runner.Run(context.Background(), Request{Language: "fortran", Code: "x"})
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestRuntimesCoverLanguageTable(t *testing.T) {
	local := NewLocalRunner().Runtimes()
	docker := (&DockerRunner{image: "agentverse-runner:latest"}).Runtimes()

	for _, runtimes := range [][]Runtime{local, docker} {
		if len(runtimes) != len(languageNames) {
			t.Fatalf("expected %d runtimes, got %d", len(languageNames), len(runtimes))
		}
		for i, rt := range runtimes {
			if rt.Language != languageNames[i] {
				t.Errorf("runtime %d = %q, want %q", i, rt.Language, languageNames[i])
			}
		}
	}
}

func TestSourceArchive(t *testing.T) {
	reader, err := sourceArchive("main.py", "print('hi')")
	if err != nil {
		t.Fatalf("sourceArchive: %v", err)
	}

	tr := tar.NewReader(reader)
	hdr, err := tr.Next()
	if err != nil {
		t.Fatalf("read tar header: %v", err)
	}
	if hdr.Name != "main.py" {
		t.Errorf("entry name = %q, want main.py", hdr.Name)
	}

	var content bytes.Buffer
	if _, err := io.Copy(&content, tr); err != nil {
		t.Fatalf("read tar body: %v", err)
	}
	if content.String() != "print('hi')" {
		t.Errorf("entry content = %q", content.String())
	}

	if _, err := tr.Next(); err != io.EOF {
		t.Errorf("expected single-entry archive, got %v", err)
	}
}
