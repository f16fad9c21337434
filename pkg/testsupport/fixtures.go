// Package testsupport holds helpers shared by package tests: form fixtures,
// golden files, deterministic IDs and captured logs.
package testsupport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-courseform/pkg/form"
)

// FormFixture is the on-disk layout of a form fixture:
//
//	structured:
//	  benefits: '[{"title":"A"}]'
//	plain:
//	  title: Course
type FormFixture struct {
	Structured map[string]string `yaml:"structured"`
	Plain      map[string]string `yaml:"plain"`
}

// Form builds a form from fixture, plain fields first, each group sorted by
// name.
func (f FormFixture) Form() *form.Form {
	out := form.New()
	for _, name := range sortedKeys(f.Plain) {
		out.Set(name, f.Plain[name])
	}
	for _, name := range sortedKeys(f.Structured) {
		out.SetStructured(name, f.Structured[name])
	}
	return out
}

// LoadFormFixture reads a YAML form fixture.
func LoadFormFixture(path string) (*form.Form, error) {
	if path == "" {
		return nil, errors.New("testsupport: fixture path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read fixture: %w", err)
	}
	var fixture FormFixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("testsupport: parse fixture %s: %w", path, err)
	}
	return fixture.Form(), nil
}

// MustLoadFormFixture is LoadFormFixture for tests.
func MustLoadFormFixture(t *testing.T, path string) *form.Form {
	t.Helper()
	f, err := LoadFormFixture(path)
	if err != nil {
		t.Fatalf("load form fixture: %v", err)
	}
	return f
}

// SequentialIDs returns a generator yielding prefix1, prefix2, and so on.
func SequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

// ObservedLogger returns a logger recording entries at level and above.
func ObservedLogger(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer, returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}

func sortedKeys(in map[string]string) []string {
	keys := make([]string, 0, len(in))
	for key := range in {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
