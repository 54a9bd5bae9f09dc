package domain

// PresentationChoice is the reduced choice view handed to presentation
// layers.
type PresentationChoice struct {
	Text string `json:"text"`
	Goto string `json:"goto,omitempty"`

	// Condition carries only the FIRST condition of the choice. This
	// truncation is inherited from the source format and downstream
	// content depends on it; it is a documented limitation, not a bug.
	Condition any `json:"condition,omitempty"`

	Requirements string `json:"requirements,omitempty"`
}

// PresentationNode is the reduced node view: display data only, no
// effects and no node-level gating.
type PresentationNode struct {
	Text     string               `json:"text"`
	Speaker  string               `json:"speaker,omitempty"`
	Portrait string               `json:"portrait,omitempty"`
	Choices  []PresentationChoice `json:"choices,omitempty"`
}

// PresentationTree is the reduced tree view for presentation layers.
type PresentationTree struct {
	ID        string                      `json:"id"`
	Title     string                      `json:"title,omitempty"`
	StartNode string                      `json:"startNode"`
	Nodes     map[string]PresentationNode `json:"nodes"`
}

// ToPresentation produces the reduced view consumed by presentation
// layers. Each choice keeps only its first condition, a lossy
// compatibility behavior of the source format, preserved deliberately.
func (t *DialogTree) ToPresentation() *PresentationTree {
	out := &PresentationTree{
		ID:        t.ID,
		Title:     t.Title,
		StartNode: t.StartNode,
		Nodes:     make(map[string]PresentationNode, len(t.Nodes)),
	}
	for id, n := range t.Nodes {
		pn := PresentationNode{
			Text:     n.Text,
			Speaker:  n.Speaker,
			Portrait: n.Portrait,
		}
		for _, ch := range n.Choices {
			pc := PresentationChoice{
				Text:         ch.Text,
				Goto:         ch.Goto,
				Requirements: ch.Requirements,
			}
			if len(ch.Conditions) > 0 {
				pc.Condition = ch.Conditions[0].Raw()
			}
			pn.Choices = append(pn.Choices, pc)
		}
		out.Nodes[id] = pn
	}
	return out
}
