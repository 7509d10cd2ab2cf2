package docsconfig_test

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"statcore/internal/docsconfig"
)

func TestDefaultMatchesPublishedSettings(t *testing.T) {
	cfg := docsconfig.Default()
	if cfg.Project != "Amplitude model serialization" || cfg.HTMLTitle != cfg.Project {
		t.Fatalf("unexpected titles %q / %q", cfg.Project, cfg.HTMLTitle)
	}
	if cfg.HTMLTheme != "pydata_sphinx_theme" || !cfg.Nitpicky {
		t.Fatalf("unexpected theme settings %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	for _, name := range []string{"myst_nb", "amsmath", "colon_fence"} {
		if !cfg.Enabled(name) {
			t.Fatalf("expected %s enabled", name)
		}
	}
	if cfg.Enabled("dollarmath") {
		t.Fatal("dollarmath is not enabled by default")
	}
}

func TestExcludedDefaultPatterns(t *testing.T) {
	cfg := docsconfig.Default()
	cases := map[string]bool{
		"_build":                                      true,
		"_build/html/index.html":                      true,
		"./_build/doctrees":                           true,
		"Thumbs.db":                                   true,
		".DS_Store":                                   true,
		".ipynb_checkpoints":                          true,
		"usage/.ipynb_checkpoints/a-checkpoint.ipynb": true,
		"index.md":                                    false,
		"usage/serialization.ipynb":                   false,
		"usage/_build":                                false,
		"usage/Thumbs.db":                             false,
		"":                                            false,
	}
	for rel, want := range cases {
		if got := cfg.Excluded(rel); got != want {
			t.Errorf("Excluded(%q) = %v, want %v", rel, got, want)
		}
	}
}

func TestExcludedConcurrentReads(t *testing.T) {
	cfg := docsconfig.Default()
	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !cfg.Excluded("_build/html/index.html") || cfg.Excluded("index.md") {
				errs <- "unexpected match result"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}

func TestExcludedUsesValidatedPatterns(t *testing.T) {
	cfg := docsconfig.Default()
	cfg.ExcludePatterns = []string{"drafts"}
	if cfg.Excluded("drafts/a.md") {
		t.Fatal("patterns applied before Validate")
	}
	if !cfg.Excluded("_build") {
		t.Fatal("default patterns dropped before Validate")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !cfg.Excluded("drafts/a.md") || cfg.Excluded("_build") {
		t.Fatal("validated patterns not applied")
	}
}

func TestGlobSegments(t *testing.T) {
	cfg := docsconfig.Default()
	cfg.ExcludePatterns = []string{"api/*.md", "img/??.png", "**/draft_*", "[!a]x.txt"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cases := map[string]bool{
		"api/model.md":       true,
		"api/sub/model.md":   false,
		"img/ab.png":         true,
		"img/abc.png":        false,
		"notes/draft_one.md": true,
		"deep/a/b/draft_x":   true,
		"draft_root.md":      false,
		"bx.txt":             true,
		"ax.txt":             false,
	}
	for rel, want := range cases {
		if got := cfg.Excluded(rel); got != want {
			t.Errorf("Excluded(%q) = %v, want %v", rel, got, want)
		}
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := docsconfig.Default()
	cfg.HTMLTheme = " "
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "html_theme") {
		t.Fatalf("expected theme error, got %v", err)
	}
	cfg = docsconfig.Default()
	cfg.ExcludePatterns = []string{"[abc"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "[abc") {
		t.Fatalf("expected pattern error, got %v", err)
	}
	cfg = docsconfig.Default()
	cfg.ExcludePatterns = []string{""}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected empty pattern error")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.toml")
	data, err := toml.Marshal(map[string]any{
		"project":          "statcore",
		"nitpicky": false,
		"exclude_patterns": []string{"_build", "**/*.tmp"},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := docsconfig.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Project != "statcore" || cfg.Nitpicky {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.HTMLTheme != "pydata_sphinx_theme" || cfg.HTMLTitle != "Amplitude model serialization" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
	if !cfg.Excluded("a/b.tmp") || cfg.Excluded(".DS_Store") {
		t.Fatal("expected the file's exclude patterns to replace the defaults")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := docsconfig.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected missing file error")
	}
	path := filepath.Join(t.TempDir(), "docs.toml")
	if err := os.WriteFile(path, []byte("html_favicon = \"x.ico\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := docsconfig.Load(path); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestWalkSkipsExcludedTrees(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{
		"index.md",
		"usage/basics.ipynb",
		"usage/.ipynb_checkpoints/basics-checkpoint.ipynb",
		"_build/html/index.html",
		".DS_Store",
	} {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	cfg := docsconfig.Default()
	files, err := cfg.Walk(root)
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	want := []string{"index.md", "usage/basics.ipynb"}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected files %v", files)
	}
	if _, err := cfg.Walk(filepath.Join(root, "absent")); err == nil {
		t.Fatal("expected walk error for missing root")
	}
}
