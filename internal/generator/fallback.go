package generator

import (
	"github.com/chetanchannaveer-rgb/Agentverse/internal/domain"
)

// fallbackProject is the fixed scaffold used whenever provider output
// cannot be parsed into a project. It always has exactly four files.
func fallbackProject(description string) *domain.GeneratedProject {
	return &domain.GeneratedProject{
		Name:        "Starter Project",
		Description: description,
		Files: []domain.ProjectFile{
			{Path: "index.html", Language: "html", Content: fallbackIndexHTML},
			{Path: "styles.css", Language: "css", Content: fallbackStylesCSS},
			{Path: "app.js", Language: "javascript", Content: fallbackAppJS},
			{Path: "README.md", Language: "markdown", Content: fallbackReadme},
		},
		Instructions: "Open index.html in a browser to run the project.",
	}
}

const fallbackIndexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Starter Project</title>
  <link rel="stylesheet" href="styles.css">
</head>
<body>
  <main class="container">
    <h1>Starter Project</h1>
    <p>Your project scaffold is ready. Edit these files to build your idea.</p>
    <button id="action">Click me</button>
    <p id="output"></p>
  </main>
  <script src="app.js"></script>
</body>
</html>
`

const fallbackStylesCSS = `* {
  box-sizing: border-box;
  margin: 0;
  padding: 0;
}

body {
  font-family: system-ui, sans-serif;
  background: #f5f6fa;
  color: #1f2430;
  display: flex;
  justify-content: center;
  padding-top: 10vh;
}

.container {
  max-width: 520px;
  text-align: center;
}

h1 {
  margin-bottom: 0.5rem;
}

button {
  margin-top: 1rem;
  padding: 0.6rem 1.4rem;
  border: none;
  border-radius: 6px;
  background: #4f6df5;
  color: white;
  font-size: 1rem;
  cursor: pointer;
}

button:hover {
  background: #3d58d8;
}
`

const fallbackAppJS = `const button = document.getElementById('action');
const output = document.getElementById('output');

let clicks = 0;

button.addEventListener('click', () => {
  clicks += 1;
  output.textContent = 'Button clicked ' + clicks + ' time' + (clicks === 1 ? '' : 's');
});
`

const fallbackReadme = `# Starter Project

A minimal static web project.

## Files

- index.html - page structure
- styles.css - styling
- app.js - interactivity

## Running

Open index.html in any browser. No build step required.
`
