package shape

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

var (
	builtinOnce     sync.Once
	builtinRegistry *Registry
	builtinErr      error
)

// Registry holds shapes keyed by name.
type Registry struct {
	shapes map[string]Shape
}

// Builtin returns the shapes shipped with the package. The embedded document
// is covered by tests, so a parse failure here is a build defect and panics.
func Builtin() *Registry {
	builtinOnce.Do(func() {
		sub, err := fs.Sub(builtinFS, "builtin")
		if err != nil {
			builtinErr = err
			return
		}
		builtinRegistry, builtinErr = LoadFS(sub)
	})
	if builtinErr != nil {
		panic(fmt.Sprintf("shape: builtin shapes: %v", builtinErr))
	}
	return builtinRegistry.clone()
}

// LoadFS walks fsys and parses every JSON/YAML shape document it finds.
// A nil fsys yields an empty registry.
func LoadFS(fsys fs.FS) (*Registry, error) {
	reg := &Registry{shapes: make(map[string]Shape)}
	if fsys == nil {
		return reg, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isShapeFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("shape: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for rawName, raw := range doc.Shapes {
			name := strings.TrimSpace(rawName)
			if name == "" {
				return fmt.Errorf("shape: file %s defines an empty shape name", path)
			}
			if _, exists := reg.shapes[name]; exists {
				return fmt.Errorf("shape: duplicate shape %q (file %s)", name, path)
			}
			normalized, err := normalizeShape(name, raw, path)
			if err != nil {
				return err
			}
			reg.shapes[name] = normalized
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// Get returns the shape registered under name.
func (r *Registry) Get(name string) (Shape, bool) {
	if r == nil {
		return Shape{}, false
	}
	s, ok := r.shapes[strings.TrimSpace(name)]
	return s, ok
}

// Names lists registered shape names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.shapes))
	for name := range r.shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a registry holding r's shapes with other's layered on top.
func (r *Registry) Merge(other *Registry) *Registry {
	out := r.clone()
	if other == nil {
		return out
	}
	for name, s := range other.shapes {
		out.shapes[name] = s
	}
	return out
}

func (r *Registry) clone() *Registry {
	out := &Registry{shapes: make(map[string]Shape)}
	if r == nil {
		return out
	}
	for name, s := range r.shapes {
		attrs := append([]Attribute(nil), s.Attributes...)
		s.Attributes = attrs
		out.shapes[name] = s
	}
	return out
}

type documentFile struct {
	Shapes map[string]Shape `json:"shapes" yaml:"shapes"`
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("shape: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("shape: parse %s: %w", source, err)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("shape: parse %s: %w", source, err)
	}
	return doc, nil
}

func normalizeShape(name string, raw Shape, source string) (Shape, error) {
	if len(raw.Attributes) == 0 {
		return Shape{}, fmt.Errorf("shape: %s (file %s) has no attributes", name, source)
	}

	out := raw
	out.Name = name
	if strings.TrimSpace(out.Label) == "" {
		out.Label = name
	}
	if strings.TrimSpace(out.ItemLabel) == "" {
		out.ItemLabel = out.Label
	}
	if strings.TrimSpace(out.AddLabel) == "" {
		out.AddLabel = "Add " + strings.ToLower(out.ItemLabel)
	}

	seen := make(map[string]struct{}, len(raw.Attributes))
	out.Attributes = make([]Attribute, 0, len(raw.Attributes))
	for idx, attr := range raw.Attributes {
		attr.Name = strings.TrimSpace(attr.Name)
		if attr.Name == "" {
			return Shape{}, fmt.Errorf("shape: %s attribute %d has no name (file %s)", name, idx, source)
		}
		if _, dup := seen[attr.Name]; dup {
			return Shape{}, fmt.Errorf("shape: %s repeats attribute %q (file %s)", name, attr.Name, source)
		}
		seen[attr.Name] = struct{}{}

		if attr.Kind == "" {
			attr.Kind = KindText
		}
		if !validKind(attr.Kind) {
			return Shape{}, fmt.Errorf("shape: %s attribute %q has unknown kind %q (file %s)", name, attr.Name, attr.Kind, source)
		}
		if attr.Label == "" {
			attr.Label = attr.Name
		}
		if attr.Kind == KindRating && attr.Default != nil {
			if _, ok := attr.Normalize(attr.Default).(int); !ok {
				return Shape{}, fmt.Errorf("shape: %s attribute %q has non-numeric default (file %s)", name, attr.Name, source)
			}
		}
		out.Attributes = append(out.Attributes, attr)
	}
	return out, nil
}

func isShapeFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}
