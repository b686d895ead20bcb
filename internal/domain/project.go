package domain

import (
	"time"
)

// ProjectFile is one generated source file inside a project.
type ProjectFile struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// GeneratedProject is a complete scaffold produced by the project
// generator, held in the project cache until downloaded or evicted.
type GeneratedProject struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Files        []ProjectFile `json:"files"`
	Instructions string        `json:"instructions"`
	CreatedAt    time.Time     `json:"createdAt"`
}
