package mapping

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ConfigFile is a YAML file of mapping configs, one per type name:
//
//	version: "1"
//	mappings:
//	  Film:
//	    title:
//	      column: film_title
//	    details:
//	      null_discriminator: director_id
//	      fields:
//	        director:
//	          fields:
//	            id:
//	              column: director_id
//	    format:
//	      sum:
//	        case_column: kind
//	        cases: {Digital: 1, Reel: 2}
//	        variants:
//	          Reel:
//	            length: {column: reel_length}
type ConfigFile struct {
	Version  string                          `yaml:"version"`
	Mappings map[string]map[string]FieldSpec `yaml:"mappings"`
}

// FieldSpec is the YAML form of a FieldConfig.
type FieldSpec struct {
	Column            string               `yaml:"column,omitempty"`
	Skip              bool                 `yaml:"skip,omitempty"`
	NullDiscriminator string               `yaml:"null_discriminator,omitempty"`
	Fields            map[string]FieldSpec `yaml:"fields,omitempty"`
	Sum               *SumSpec             `yaml:"sum,omitempty"`
}

// SumSpec is the YAML form of a SumConfig. Variants maps a variant name to
// the configuration of its fields.
type SumSpec struct {
	CaseColumn string                          `yaml:"case_column"`
	Cases      map[string]any                  `yaml:"cases,omitempty"`
	Variants   map[string]map[string]FieldSpec `yaml:"variants,omitempty"`
}

// LoadConfigFile loads and parses a YAML mapping config file.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML data into a ConfigFile.
func ParseConfig(data []byte) (*ConfigFile, error) {
	var cf ConfigFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("%w: failed to parse mapping YAML: %v", ErrConfig, err)
	}
	applyDefaults(&cf)
	return &cf, nil
}

func applyDefaults(cf *ConfigFile) {
	if cf.Version == "" {
		cf.Version = "1"
	}
	if cf.Mappings == nil {
		cf.Mappings = make(map[string]map[string]FieldSpec)
	}
}

// Names returns the configured type names, sorted.
func (cf *ConfigFile) Names() []string {
	names := make([]string, 0, len(cf.Mappings))
	for name := range cf.Mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Config converts the mapping of the named type to a Config. Variants of
// open families are resolved by name against shapes.
func (cf *ConfigFile) Config(name string, shapes ...*Shape) (Config, error) {
	specs, ok := cf.Mappings[name]
	if !ok {
		return nil, fmt.Errorf("%w: no mapping for %s", ErrConfig, name)
	}
	byName := make(map[string]*Shape, len(shapes))
	for _, s := range shapes {
		byName[s.Name] = s
	}
	return toConfig(specs, byName, name)
}

func toConfig(specs map[string]FieldSpec, shapes map[string]*Shape, path string) (Config, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	c := make(Config, len(specs))
	for field, spec := range specs {
		fc, err := spec.toFieldConfig(shapes, path+"."+field)
		if err != nil {
			return nil, err
		}
		c[field] = fc
	}
	return c, nil
}

func (spec FieldSpec) toFieldConfig(shapes map[string]*Shape, path string) (FieldConfig, error) {
	fc := FieldConfig{
		Skip:              spec.Skip,
		Column:            spec.Column,
		NullDiscriminator: spec.NullDiscriminator,
	}
	if spec.Fields != nil && spec.Sum != nil {
		return fc, fmt.Errorf("%w: %s sets both fields and sum", ErrConfig, path)
	}
	if spec.Fields != nil {
		fields, err := toConfig(spec.Fields, shapes, path)
		if err != nil {
			return fc, err
		}
		fc.Product = &ProductConfig{Fields: fields}
	}
	if spec.Sum != nil {
		sc, err := spec.Sum.toSumConfig(shapes, path)
		if err != nil {
			return fc, err
		}
		fc.Sum = sc
	}
	return fc, nil
}

func (spec *SumSpec) toSumConfig(shapes map[string]*Shape, path string) (*SumConfig, error) {
	sc := &SumConfig{CaseColumn: spec.CaseColumn}
	if spec.Cases != nil {
		cases, err := CaseValues(spec.Cases)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		sc.Cases = cases
	}

	names := make([]string, 0, len(spec.Variants))
	for name := range spec.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fields, err := toConfig(spec.Variants[name], shapes, path+"<"+name+">")
		if err != nil {
			return nil, err
		}
		sc.Variants = append(sc.Variants, VariantConfig{Name: name, Shape: shapes[name], Fields: fields})
	}
	return sc, nil
}

// ReferencedColumns returns every column name the named mapping spells out
// explicitly: column overrides, null discriminators and case columns. Fields
// mapped by their own name are not included.
func (cf *ConfigFile) ReferencedColumns(name string) []string {
	seen := make(map[string]bool)
	collectColumns(cf.Mappings[name], seen)
	cols := make([]string, 0, len(seen))
	for c := range seen {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func collectColumns(specs map[string]FieldSpec, seen map[string]bool) {
	for _, spec := range specs {
		if spec.Column != "" {
			seen[spec.Column] = true
		}
		if spec.NullDiscriminator != "" {
			seen[spec.NullDiscriminator] = true
		}
		collectColumns(spec.Fields, seen)
		if spec.Sum != nil {
			if spec.Sum.CaseColumn != "" {
				seen[spec.Sum.CaseColumn] = true
			}
			for _, v := range spec.Sum.Variants {
				collectColumns(v, seen)
			}
		}
	}
}
