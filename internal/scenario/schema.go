package scenario

import (
	"gopkg.in/yaml.v3"
)

// document is the YAML form of one scenario.
type document struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Structs     []structDoc `yaml:"structs"`
	Regions     []regionDoc `yaml:"regions"`
	Vars        []textLine  `yaml:"vars"`
	Blocks      []blockDoc  `yaml:"blocks"`
	Assert      []textLine  `yaml:"assert"`
}

type structDoc struct {
	Name   string     `yaml:"name"`
	Box    bool       `yaml:"box"`
	Params []paramDoc `yaml:"params"`
	Fields []textLine `yaml:"fields"`

	line int
}

func (s *structDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain structDoc
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = structDoc(p)
	s.line = node.Line
	return nil
}

// paramDoc accepts either a bare name or a mapping:
//
//	params: [T, "'a"]
//	params:
//	  - {name: T, variance: contra, may_dangle: true}
type paramDoc struct {
	Name      string `yaml:"name"`
	Variance  string `yaml:"variance"`
	MayDangle bool   `yaml:"may_dangle"`
}

func (p *paramDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Name = node.Value
		return nil
	}
	type plain paramDoc
	return node.Decode((*plain)(p))
}

// regionDoc accepts either a bare name or {name, universal}.
type regionDoc struct {
	Name      string `yaml:"name"`
	Universal bool   `yaml:"universal"`
}

func (r *regionDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Name = node.Value
		return nil
	}
	type plain regionDoc
	return node.Decode((*plain)(r))
}

type blockDoc struct {
	Name string     `yaml:"name"`
	Do   []textLine `yaml:"do"`
	Goto []string   `yaml:"goto"`

	line int
}

func (b *blockDoc) UnmarshalYAML(node *yaml.Node) error {
	type plain blockDoc
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*b = blockDoc(p)
	b.line = node.Line
	return nil
}

// textLine is a scalar remembering the line it was read from. A one-entry
// mapping is accepted too, so `- root: List<()>` reads as "root: List<()>".
type textLine struct {
	Text string
	Line int
}

func (t *textLine) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode && len(node.Content) == 2 {
		t.Text = node.Content[0].Value + ": " + node.Content[1].Value
		t.Line = node.Line
		return nil
	}
	if err := node.Decode(&t.Text); err != nil {
		return err
	}
	t.Line = node.Line
	return nil
}
