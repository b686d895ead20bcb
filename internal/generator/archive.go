package generator

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
)

// WriteArchive streams the project's files as a zip archive. File paths
// are sanitized so a hostile model response cannot escape the archive
// root.
func WriteArchive(w io.Writer, project *domain.GeneratedProject) error {
	zw := zip.NewWriter(w)

	for _, file := range project.Files {
		name := sanitizeArchivePath(file.Path)
		if name == "" {
			continue
		}
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("create archive entry %s: %w", name, err)
		}
		if _, err := io.WriteString(fw, file.Content); err != nil {
			return fmt.Errorf("write archive entry %s: %w", name, err)
		}
	}

	if project.Instructions != "" {
		fw, err := zw.Create("INSTRUCTIONS.txt")
		if err != nil {
			return fmt.Errorf("create instructions entry: %w", err)
		}
		if _, err := io.WriteString(fw, project.Instructions+"\n"); err != nil {
			return fmt.Errorf("write instructions entry: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize archive: %w", err)
	}
	return nil
}

// sanitizeArchivePath normalizes a model-supplied file path to a safe
// relative path inside the archive. It returns "" for paths that
// resolve outside the root.
func sanitizeArchivePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimLeft(p, "/")
	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return ""
	}
	return cleaned
}
