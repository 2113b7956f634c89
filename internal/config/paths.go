package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Default file names within the data directory.
const (
	bufferFileName       = "buffer.txt"
	systemPromptFileName = "system_prompt.txt"
	patternsFileName     = "patterns.txt"
	logDirName           = "logs"
	logFileName          = "hansel.log"
)

// DefaultSystemPrompt is written to the system prompt file on first run.
// It frames the advisor as an architect answering on behalf of the operator;
// the response is typed verbatim into the supervised terminal, so markdown
// is forbidden.
const DefaultSystemPrompt = `You are a senior system architect helping Claude (another AI) implement a software project.

CRITICAL RULES:
1. Give DIRECT, ACTIONABLE answers - no fluff
2. When asked yes/no questions, start with "yes" or "no"
3. When asked to choose between options, state your choice first
4. Keep responses concise (2-4 sentences max for simple questions)
5. For technical questions, include brief code snippets if helpful

Your response will be automatically typed into Claude's terminal, so:
- Don't use markdown formatting (no backticks, no ##, no **)
- Write plain text only
- Be concise - long responses slow things down

Examples:
Q: "Should I use PostgreSQL or MongoDB?"
A: PostgreSQL. Better for relational data, ACID compliance, and complex queries. MongoDB only if you need flexible schemas for unstructured data.

Q: "Do you want me to proceed with this implementation?"
A: Yes, proceed.

Q: "How should I structure the API endpoints?"
A: Use RESTful conventions: GET /users for list, POST /users for create, GET /users/:id for single, PUT /users/:id for update, DELETE /users/:id for delete.
`

// ResolveDataDir returns the resolved data directory path.
// If DataDir is empty, it returns ~/.hansel.
// If DataDir starts with ~, it expands to the user's home directory.
func (p *PathsConfig) ResolveDataDir() string {
	path := p.DataDir
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ".hansel"
		}
		return filepath.Join(home, ".hansel")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return path
}

// BufferFile returns the path to the transcript buffer file
func (p *PathsConfig) BufferFile() string {
	return filepath.Join(p.ResolveDataDir(), bufferFileName)
}

// SystemPromptFile returns the path to the advisor system prompt file
func (p *PathsConfig) SystemPromptFile() string {
	return filepath.Join(p.ResolveDataDir(), systemPromptFileName)
}

// PatternsFile returns the path to the user question-pattern override file
func (p *PathsConfig) PatternsFile() string {
	return filepath.Join(p.ResolveDataDir(), patternsFileName)
}

// LogDir returns the path to the log directory
func (p *PathsConfig) LogDir() string {
	return filepath.Join(p.ResolveDataDir(), logDirName)
}

// LogFile returns the path to the session log file
func (p *PathsConfig) LogFile() string {
	return filepath.Join(p.LogDir(), logFileName)
}

// EnsureDirs creates the data directory tree and seeds the default system
// prompt on first run. Existing files are never overwritten.
func (p *PathsConfig) EnsureDirs() error {
	if err := os.MkdirAll(p.ResolveDataDir(), 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(p.LogDir(), 0755); err != nil {
		return err
	}

	promptPath := p.SystemPromptFile()
	if _, err := os.Stat(promptPath); os.IsNotExist(err) {
		if err := os.WriteFile(promptPath, []byte(DefaultSystemPrompt), 0644); err != nil {
			return err
		}
	}

	return nil
}
