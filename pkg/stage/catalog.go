package stage

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed stages.yaml
var defaultDefinitions []byte

// Group is the functional group a stage belongs to.
type Group string

const (
	GroupIntake        Group = "intake"
	GroupResearch      Group = "research"
	GroupStrategy      Group = "strategy"
	GroupPlanning      Group = "planning"
	GroupFinalAnalysis Group = "final_analysis"
)

// Pipeline names shipped in stages.yaml.
const (
	PipelineFull    = "full"
	PipelineReduced = "reduced"
)

// Stage is one unit of work in a pipeline.
type Stage struct {
	ID           string `yaml:"id"`
	DisplayName  string `yaml:"display_name"`
	Group        Group  `yaml:"group"`
	OutputKey    string `yaml:"output_key"`
	CannedPhrase string `yaml:"canned_phrase"`
	Instruction  string `yaml:"instruction"`
}

// Words returns the stage id written as plain words ("zoning_researcher" -> "zoning researcher").
func (s Stage) Words() string {
	return strings.ReplaceAll(s.ID, "_", " ")
}

// Pipeline is an ordered list of stage ids ending at a terminal stage.
type Pipeline struct {
	Name          string
	Stages        []string
	TerminalStage string
	ResultKey     string
}

type definitions struct {
	Stages    []Stage `yaml:"stages"`
	Pipelines map[string]struct {
		Stages        []string `yaml:"stages"`
		TerminalStage string   `yaml:"terminal_stage"`
	} `yaml:"pipelines"`
}

// Catalog holds every known stage and pipeline. It is built once at startup
// and never mutated afterwards.
type Catalog struct {
	stages    map[string]Stage
	order     []string
	pipelines map[string]Pipeline
}

// Load parses a YAML stage definition document.
func Load(data []byte) (*Catalog, error) {
	var defs definitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse stage definitions: %w", err)
	}

	c := &Catalog{
		stages:    make(map[string]Stage, len(defs.Stages)),
		pipelines: make(map[string]Pipeline, len(defs.Pipelines)),
	}
	for _, s := range defs.Stages {
		if s.ID == "" {
			return nil, fmt.Errorf("stage definition missing id")
		}
		if _, dup := c.stages[s.ID]; dup {
			return nil, fmt.Errorf("duplicate stage id %q", s.ID)
		}
		if s.OutputKey == "" {
			return nil, fmt.Errorf("stage %q has no output_key", s.ID)
		}
		if s.DisplayName == "" {
			s.DisplayName = s.ID
		}
		c.stages[s.ID] = s
		c.order = append(c.order, s.ID)
	}

	for name, p := range defs.Pipelines {
		if len(p.Stages) == 0 {
			return nil, fmt.Errorf("pipeline %q has no stages", name)
		}
		terminalListed := false
		for _, id := range p.Stages {
			if _, ok := c.stages[id]; !ok {
				return nil, fmt.Errorf("pipeline %q references unknown stage %q", name, id)
			}
			if id == p.TerminalStage {
				terminalListed = true
			}
		}
		if !terminalListed {
			return nil, fmt.Errorf("pipeline %q terminal stage %q is not one of its stages", name, p.TerminalStage)
		}
		c.pipelines[name] = Pipeline{
			Name:          name,
			Stages:        append([]string(nil), p.Stages...),
			TerminalStage: p.TerminalStage,
			ResultKey:     c.stages[p.TerminalStage].OutputKey,
		}
	}

	return c, nil
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Load(defaultDefinitions)
}

// MustDefault is Default for program initialisation and tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the stage with the given id.
func (c *Catalog) Lookup(id string) (Stage, bool) {
	s, ok := c.stages[id]
	return s, ok
}

// DisplayName falls back to the id for unknown stages.
func (c *Catalog) DisplayName(id string) string {
	if s, ok := c.stages[id]; ok {
		return s.DisplayName
	}
	return id
}

// Pipeline returns the named pipeline.
func (c *Catalog) Pipeline(name string) (Pipeline, bool) {
	p, ok := c.pipelines[name]
	return p, ok
}

// StagesOf resolves the stage ids of p in order.
func (c *Catalog) StagesOf(p Pipeline) []Stage {
	out := make([]Stage, 0, len(p.Stages))
	for _, id := range p.Stages {
		if s, ok := c.stages[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

// All returns every stage in definition order.
func (c *Catalog) All() []Stage {
	out := make([]Stage, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.stages[id])
	}
	return out
}
