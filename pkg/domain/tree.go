package domain

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DialogTree is a named, id-keyed collection of nodes plus a designated
// start node. Trees are immutable authoring data: loaded at content-load
// time and shared by any number of sessions. The graph is an arena of
// nodes keyed by id (no pointer back-references), so cycles are legal
// and traversal is always explicit-step.
type DialogTree struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	StartNode   string `json:"startNode" yaml:"startNode"`

	Nodes map[string]*DialogNode `json:"nodes" yaml:"nodes"`

	// Variables seed the context namespace when a session starts.
	Variables map[string]any `json:"variables,omitempty" yaml:"variables,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Node looks up a node by id.
func (t *DialogTree) Node(id string) (*DialogNode, bool) {
	n, ok := t.Nodes[id]
	return n, ok
}

// Start returns the designated start node, or nil if the start id does
// not resolve (a structural authoring error reported by Validate).
func (t *DialogTree) Start() *DialogNode {
	return t.Nodes[t.StartNode]
}

// ToJSON serializes the tree, preserving condition/effect payloads in
// their authored form.
func (t *DialogTree) ToJSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// TreeFromJSON parses a serialized tree and revives every node and
// choice into its typed form. Node ids are restored from the map keys.
func TreeFromJSON(data []byte) (*DialogTree, error) {
	var t DialogTree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse dialog tree: %w", err)
	}
	return finishTree(&t)
}

// TreeFromYAML parses a YAML-authored tree.
func TreeFromYAML(data []byte) (*DialogTree, error) {
	var t DialogTree
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse dialog tree: %w", err)
	}
	return finishTree(&t)
}

func finishTree(t *DialogTree) (*DialogTree, error) {
	if t.Nodes == nil {
		t.Nodes = make(map[string]*DialogNode)
	}
	for id, n := range t.Nodes {
		if n == nil {
			t.Nodes[id] = &DialogNode{ID: id}
			continue
		}
		n.ID = id
	}
	if t.StartNode == "" {
		return nil, fmt.Errorf("dialog tree %q has no start node", t.ID)
	}
	return t, nil
}

// Validate reports structural problems for content authors: a missing
// start node, dangling goto/nextNode references, and condition/effect
// payloads that match no known shape. Dangling references are legal at
// authoring time (they resolve to a terminal transition at runtime), so
// these are warnings, not load failures.
func (t *DialogTree) Validate() []string {
	var problems []string

	if _, ok := t.Nodes[t.StartNode]; !ok {
		problems = append(problems, fmt.Sprintf("start node %q does not exist", t.StartNode))
	}

	for id, n := range t.Nodes {
		if n.AutoAdvance && n.NextNode == "" {
			problems = append(problems, fmt.Sprintf("node %q: autoAdvance without nextNode", id))
		}
		if n.NextNode != "" {
			if _, ok := t.Nodes[n.NextNode]; !ok {
				problems = append(problems, fmt.Sprintf("node %q: nextNode %q does not exist", id, n.NextNode))
			}
		}
		for _, c := range n.Conditions {
			if !c.Valid() {
				problems = append(problems, fmt.Sprintf("node %q: unparseable condition %v", id, c.Raw()))
			}
		}
		for _, e := range n.Effects {
			if !e.Valid() {
				problems = append(problems, fmt.Sprintf("node %q: unparseable effect %v", id, e.Raw()))
			}
		}
		for i, ch := range n.Choices {
			if ch.Goto != "" {
				if _, ok := t.Nodes[ch.Goto]; !ok {
					problems = append(problems, fmt.Sprintf("node %q choice %d: goto %q does not exist", id, i, ch.Goto))
				}
			}
			for _, c := range ch.Conditions {
				if !c.Valid() {
					problems = append(problems, fmt.Sprintf("node %q choice %d: unparseable condition %v", id, i, c.Raw()))
				}
			}
			for _, e := range ch.Effects {
				if !e.Valid() {
					problems = append(problems, fmt.Sprintf("node %q choice %d: unparseable effect %v", id, i, e.Raw()))
				}
			}
		}
	}
	return problems
}
