// Package scenario reads scenario files into model sources.
//
// # File Forms
//
//	┌──────────────┬──────────────────────────────────────────────────────┐
//	│ .yaml / .yml │ one scenario per YAML document ("---" separated)     │
//	│ .txtar       │ every .yaml/.yml member of the archive               │
//	│ directory    │ every file above, walked in lexical order            │
//	└──────────────┴──────────────────────────────────────────────────────┘
//
// A scenario whose document cannot be parsed is still returned, with Err set,
// so that one broken scenario does not hide the others.
package scenario

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"

	"github.com/nikomatsakis/borrowck/internal/model"
)

// Scenario is one scenario read from disk.
type Scenario struct {
	Name        string
	Description string
	// Path names the file, or archive/member, the scenario came from.
	Path   string
	Source *model.Source
	// Err is set instead of Source when the scenario is malformed. It wraps
	// model.ErrMalformedProgram.
	Err error
}

// =============================================================================
// Loading
// =============================================================================

// Load reads every scenario found under paths, in order.
func Load(paths ...string) ([]*Scenario, error) {
	var out []*Scenario
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrap(err, "load scenarios")
		}
		files := []string{path}
		if info.IsDir() {
			if files, err = scenarioFiles(path); err != nil {
				return nil, err
			}
		}
		for _, f := range files {
			scenarios, err := LoadFile(f)
			if err != nil {
				return nil, err
			}
			out = append(out, scenarios...)
		}
	}
	return out, nil
}

func scenarioFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isScenarioFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", dir)
	}
	sort.Strings(files)
	return files, nil
}

func isScenarioFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yaml", ".yml", ".txtar":
		return true
	}
	return false
}

// LoadFile reads one .yaml, .yml or .txtar file.
func LoadFile(path string) ([]*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load scenarios")
	}
	switch filepath.Ext(path) {
	case ".txtar":
		return ParseArchive(path, data), nil
	case ".yaml", ".yml":
		return Parse(path, data), nil
	default:
		return nil, errors.Errorf("%s: not a scenario file (want .yaml, .yml or .txtar)", path)
	}
}

// ParseArchive parses every YAML member of a txtar archive. The archive
// comment is free-form and ignored.
func ParseArchive(path string, data []byte) []*Scenario {
	ar := txtar.Parse(data)
	var out []*Scenario
	for _, f := range ar.Files {
		if ext := filepath.Ext(f.Name); ext != ".yaml" && ext != ".yml" {
			continue
		}
		out = append(out, Parse(path+"/"+f.Name, f.Data)...)
	}
	return out
}

// Parse parses a YAML stream holding one scenario per document.
func Parse(path string, data []byte) []*Scenario {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var out []*Scenario
	for i := 0; ; i++ {
		var doc document
		err := dec.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			// The decoder cannot resynchronize; later documents are lost.
			return append(out, &Scenario{
				Name: defaultName(path, i),
				Path: path,
				Err:  errors.Wrapf(model.ErrMalformedProgram, "%s: %v", path, err),
			})
		}
		if doc.isEmpty() {
			continue
		}

		sc := &Scenario{Name: doc.Name, Description: doc.Description, Path: path}
		if sc.Name == "" {
			sc.Name = defaultName(path, i)
		}
		src, err := doc.source(sc.Name)
		if err != nil {
			sc.Err = errors.WithMessage(err, path)
		} else {
			sc.Source = src
		}
		out = append(out, sc)
	}
	return out
}

func defaultName(path string, i int) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i == 0 {
		return base
	}
	return fmt.Sprintf("%s#%d", base, i+1)
}

// =============================================================================
// Conversion
// =============================================================================

func (d *document) isEmpty() bool {
	return d.Name == "" && len(d.Blocks) == 0 && len(d.Structs) == 0 && len(d.Vars) == 0
}

func (d *document) source(name string) (*model.Source, error) {
	src := &model.Source{Name: name}

	for _, sd := range d.Structs {
		decl := model.StructDecl{Name: sd.Name, Box: sd.Box, Line: sd.line}
		for _, pd := range sd.Params {
			v, err := parseVariance(pd.Variance)
			if err != nil {
				return nil, errors.WithMessagef(err, "line %d: struct %s", sd.line, sd.Name)
			}
			decl.Params = append(decl.Params, model.ParamDecl{Name: pd.Name, Variance: v, MayDangle: pd.MayDangle})
		}
		for _, f := range sd.Fields {
			name, t, err := parseDecl(f.Text)
			if err != nil {
				return nil, errors.WithMessagef(err, "line %d", f.Line)
			}
			decl.Fields = append(decl.Fields, model.FieldDecl{Name: name, Type: t})
		}
		src.Structs = append(src.Structs, decl)
	}

	for _, r := range d.Regions {
		src.Regions = append(src.Regions, model.RegionDecl{Name: r.Name, Universal: r.Universal})
	}

	for _, v := range d.Vars {
		name, t, err := parseDecl(v.Text)
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", v.Line)
		}
		src.Vars = append(src.Vars, model.VarDecl{Name: name, Type: t, Line: v.Line})
	}

	for _, bd := range d.Blocks {
		block := model.BlockDecl{Name: bd.Name, Goto: bd.Goto, Line: bd.line}
		for _, l := range bd.Do {
			s, err := ParseStatement(l.Text)
			if err != nil {
				return nil, errors.WithMessagef(err, "line %d", l.Line)
			}
			s.Line = l.Line
			block.Statements = append(block.Statements, s)
		}
		src.Blocks = append(src.Blocks, block)
	}

	for _, l := range d.Assert {
		a, err := ParseAssertion(l.Text)
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", l.Line)
		}
		a.Line = l.Line
		src.Assertions = append(src.Assertions, a)
	}
	return src, nil
}

// parseDecl splits "name: type".
func parseDecl(text string) (string, model.TypeExpr, error) {
	i := strings.Index(text, ":")
	if i < 0 {
		return "", model.TypeExpr{}, syntaxf("%q: expected `name: type`", text)
	}
	name := strings.TrimSpace(text[:i])
	if name == "" || strings.IndexFunc(name, func(r rune) bool { return !isIdentRune(r) }) >= 0 {
		return "", model.TypeExpr{}, syntaxf("%q: bad name %q", text, name)
	}
	t, err := ParseType(strings.TrimSpace(text[i+1:]))
	return name, t, err
}

func parseVariance(s string) (model.Variance, error) {
	switch s {
	case "", "co", "covariant":
		return model.Covariant, nil
	case "contra", "contravariant":
		return model.Contravariant, nil
	case "in", "invariant":
		return model.Invariant, nil
	default:
		return 0, syntaxf("unknown variance %q", s)
	}
}

// Program parses the first scenario of a YAML stream and builds it.
func Program(data []byte) (*model.Program, error) {
	scenarios := Parse("inline.yaml", data)
	if len(scenarios) == 0 {
		return nil, errors.Wrap(model.ErrMalformedProgram, "no scenario")
	}
	if sc := scenarios[0]; sc.Err != nil {
		return nil, sc.Err
	}
	return model.Build(scenarios[0].Source)
}
