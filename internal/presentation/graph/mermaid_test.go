package graph_test

import (
	"strings"
	"testing"

	"github.com/mojomast/arbor/internal/presentation/graph"
	"github.com/mojomast/arbor/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		tree     *domain.DialogTree
		overlay  *graph.Overlay
		contains []string
	}{
		{
			name: "Start Node Shape",
			tree: &domain.DialogTree{
				StartNode: "greeting",
				Nodes: map[string]*domain.DialogNode{
					"greeting": {ID: "greeting", Choices: []domain.DialogChoice{{Text: "Hi", Goto: "end"}}},
					"end":      {ID: "end"},
				},
			},
			contains: []string{
				`greeting(("greeting"))`,
				`end[["end"]]`,
				`greeting -- "Hi" --> end`,
			},
		},
		{
			name: "Auto Advance Dotted Edge",
			tree: &domain.DialogTree{
				StartNode: "a",
				Nodes: map[string]*domain.DialogNode{
					"a": {ID: "a", AutoAdvance: true, NextNode: "b"},
					"b": {ID: "b"},
				},
			},
			contains: []string{
				"a -.-> b",
			},
		},
		{
			name: "Condition Label Escaping",
			tree: &domain.DialogTree{
				StartNode: "a",
				Nodes: map[string]*domain.DialogNode{
					"a": {ID: "a", Choices: []domain.DialogChoice{{
						Text:       "Enter",
						Goto:       "b",
						Conditions: []domain.Condition{domain.ParseCondition("flag.has_key")},
					}}},
					"b": {ID: "b"},
				},
			},
			contains: []string{
				`a -- "Enter [flag.has_key]" --> b`,
			},
		},
		{
			name: "ID Sanitization",
			tree: &domain.DialogTree{
				StartNode: "intro-scene",
				Nodes: map[string]*domain.DialogNode{
					"intro-scene": {ID: "intro-scene", Choices: []domain.DialogChoice{{Text: "Go", Goto: "act.two"}}},
					"act.two":     {ID: "act.two"},
				},
			},
			contains: []string{
				`intro_scene(("intro-scene"))`,
				`act_two[["act.two"]]`,
				"intro_scene -- \"Go\" --> act_two",
			},
		},
		{
			name: "Overlay Styles",
			tree: &domain.DialogTree{
				StartNode: "a",
				Nodes: map[string]*domain.DialogNode{
					"a": {ID: "a", AutoAdvance: true, NextNode: "b"},
					"b": {ID: "b"},
				},
			},
			overlay: &graph.Overlay{
				VisitedNodes: []string{"a", "a", "ghost"},
				CurrentNode:  "b",
			},
			contains: []string{
				"classDef visited",
				"class a visited;",
				"class b current;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.tree, tt.overlay)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			if strings.Contains(got, "class ghost visited") {
				t.Errorf("unknown nodes must not be styled:\n%v", got)
			}
		})
	}
}
