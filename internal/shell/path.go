package shell

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"gopkg.in/yaml.v3"
)

// Path is a file system path with convenience readers and writers.
type Path struct {
	p string
}

// Path returns p resolved against the shell's working directory.
func (s *Shell) Path(p string) Path {
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.Dir(), p)
	}
	return Path{p: filepath.Clean(p)}
}

func (p Path) String() string { return p.p }

// Join appends elements to the path.
func (p Path) Join(elem ...string) Path {
	return Path{p: filepath.Join(append([]string{p.p}, elem...)...)}
}

// Parent returns the containing directory.
func (p Path) Parent() Path { return Path{p: filepath.Dir(p.p)} }

// Base returns the last element.
func (p Path) Base() string { return filepath.Base(p.p) }

func (p Path) Exists() bool {
	_, err := os.Stat(p.p)
	return err == nil
}

func (p Path) IsDir() bool {
	info, err := os.Stat(p.p)
	return err == nil && info.IsDir()
}

func (p Path) IsFile() bool {
	info, err := os.Stat(p.p)
	return err == nil && info.Mode().IsRegular()
}

// ReadText returns the file content as a string.
func (p Path) ReadText() (string, error) {
	b, err := os.ReadFile(p.p)
	if err != nil {
		return "", fmt.Errorf("shell: %w", err)
	}
	return string(b), nil
}

// ReadJSON decodes the file into v.
func (p Path) ReadJSON(v any) error {
	b, err := os.ReadFile(p.p)
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("shell: parsing %s: %w", p.p, err)
	}
	return nil
}

// ReadYAML decodes the file into v.
func (p Path) ReadYAML(v any) error {
	b, err := os.ReadFile(p.p)
	if err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("shell: parsing %s: %w", p.p, err)
	}
	return nil
}

// WriteText writes text to the file, creating missing parent directories.
func (p Path) WriteText(text string) error {
	if err := os.MkdirAll(filepath.Dir(p.p), 0o755); err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	if err := os.WriteFile(p.p, []byte(text), 0o644); err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	return nil
}

// GitRoot returns the work tree root of the git repository containing p.
func (p Path) GitRoot() (Path, error) {
	start := p.p
	if !p.IsDir() {
		start = filepath.Dir(start)
	}
	repo, err := git.PlainOpenWithOptions(start, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Path{}, fmt.Errorf("shell: %s is not inside a git repository: %w", p.p, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return Path{}, fmt.Errorf("shell: %s: %w", p.p, err)
	}
	return Path{p: wt.Filesystem.Root()}, nil
}

// Ignored reports whether p is excluded by the .gitignore files between the
// repository root and p.
func (p Path) Ignored() (bool, error) {
	root, err := p.GitRoot()
	if err != nil {
		return false, err
	}
	rel, err := filepath.Rel(root.p, p.p)
	if err != nil || rel == "." {
		return false, err
	}
	comps := strings.Split(filepath.ToSlash(rel), "/")

	var patterns []gitignore.Pattern
	for i := range comps {
		domain := comps[:i:i]
		dir := filepath.Join(append([]string{root.p}, domain...)...)
		data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			patterns = append(patterns, gitignore.ParsePattern(line, domain))
		}
	}
	if len(patterns) == 0 {
		return false, nil
	}
	return gitignore.NewMatcher(patterns).Match(comps, p.IsDir()), nil
}
