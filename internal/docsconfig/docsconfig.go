// Package docsconfig holds the documentation build settings: the project
// title, the HTML theme, the exclude patterns applied to source files and
// the extensions turned on for notebook and MyST rendering.
package docsconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config mirrors the documentation build settings file.
type Config struct {
	Project              string   `toml:"project"`
	HTMLTitle            string   `toml:"html_title"`
	HTMLTheme            string   `toml:"html_theme"`
	Nitpicky             bool     `toml:"nitpicky"`
	ExcludePatterns      []string `toml:"exclude_patterns"`
	Extensions           []string `toml:"extensions"`
	MystEnableExtensions []string `toml:"myst_enable_extensions"`

	compiled []*regexp.Regexp
}

// Default returns the settings the documentation has always been built with,
// with its exclude patterns already compiled.
func Default() Config {
	cfg := Config{
		Project:              "Amplitude model serialization",
		HTMLTitle:            "Amplitude model serialization",
		HTMLTheme:            "pydata_sphinx_theme",
		Nitpicky:             true,
		ExcludePatterns:      []string{"_build", "Thumbs.db", ".DS_Store", "**.ipynb_checkpoints"},
		Extensions:           []string{"myst_nb"},
		MystEnableExtensions: []string{"amsmath", "colon_fence"},
	}
	compiled, err := compilePatterns(cfg.ExcludePatterns)
	if err != nil {
		panic(err)
	}
	cfg.compiled = compiled
	return cfg
}

// Load reads path over the defaults. Keys absent from the file keep their
// default value; unknown keys are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read docs config %q: %w", path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse docs config %q: %w", path, err)
	}
	if cfg.HTMLTitle == "" {
		cfg.HTMLTitle = cfg.Project
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate requires a theme and compiles the exclude patterns.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Project) == "" {
		return errors.New("docs config: project is required")
	}
	if strings.TrimSpace(c.HTMLTheme) == "" {
		return errors.New("docs config: html_theme is required")
	}
	compiled, err := compilePatterns(c.ExcludePatterns)
	if err != nil {
		return err
	}
	c.compiled = compiled
	return nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		re, err := compilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("docs config: exclude pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// compilePattern translates a glob: "**" spans directories, "*" stays within
// one path segment and "?" matches a single non-separator character.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, errors.New("empty pattern")
	}
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; c {
		case '*':
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				b.WriteString(".*")
				i++
				continue
			}
			b.WriteString("[^/]*")
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				return nil, errors.New("unterminated character class")
			}
			class := pattern[i+1 : i+1+end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			b.WriteString("[" + class + "]")
			i += end + 1
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// Excluded reports whether rel, a slash-separated path relative to the
// documentation root, or any of its parent directories matches a pattern.
// It uses the patterns as last compiled by Default, Load or Validate and is
// safe for concurrent use.
func (c *Config) Excluded(rel string) bool {
	rel = strings.TrimPrefix(path.Clean(filepath.ToSlash(rel)), "./")
	if rel == "." || rel == "" {
		return false
	}
	for candidate := rel; candidate != "." && candidate != "/"; candidate = path.Dir(candidate) {
		for _, re := range c.compiled {
			if re.MatchString(candidate) {
				return true
			}
		}
	}
	return false
}

// Enabled reports whether name is a configured extension or MyST feature.
func (c *Config) Enabled(name string) bool {
	return slices.Contains(c.Extensions, name) || slices.Contains(c.MystEnableExtensions, name)
}

// Walk lists the files under root that are not excluded, as sorted
// slash-separated paths relative to root. Excluded directories are skipped.
func (c *Config) Walk(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if c.Excluded(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	slices.Sort(out)
	return out, nil
}
