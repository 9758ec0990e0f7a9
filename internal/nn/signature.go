package nn

import (
	"strconv"
	"strings"
)

// Signature identifies a typed numeric channel: a kind and its fixed width.
type Signature struct {
	Kind       string
	Dimensions int
}

func (s Signature) String() string {
	return s.Kind + "^" + strconv.Itoa(s.Dimensions)
}

func summarize(signatures []Signature) string {
	parts := make([]string, len(signatures))
	for i, signature := range signatures {
		parts[i] = signature.String()
	}
	return strings.Join(parts, " * ")
}

func totalDimensions(signatures []Signature) int {
	total := 0
	for _, signature := range signatures {
		total += signature.Dimensions
	}
	return total
}

// cortexCache indexes cortices structurally: one trie level per input
// signature, then a map on the output signature.
type cortexCache struct {
	root cortexNode
	size int
}

type cortexNode struct {
	next     map[Signature]*cortexNode
	cortices map[Signature]*Cortex
}

func (c *cortexCache) get(inputs []Signature, output Signature) (*Cortex, bool) {
	node := &c.root
	for _, signature := range inputs {
		child, ok := node.next[signature]
		if !ok {
			return nil, false
		}
		node = child
	}
	cortex, ok := node.cortices[output]
	return cortex, ok
}

func (c *cortexCache) put(inputs []Signature, output Signature, cortex *Cortex) {
	node := &c.root
	for _, signature := range inputs {
		if node.next == nil {
			node.next = make(map[Signature]*cortexNode)
		}
		child, ok := node.next[signature]
		if !ok {
			child = &cortexNode{}
			node.next[signature] = child
		}
		node = child
	}
	if node.cortices == nil {
		node.cortices = make(map[Signature]*Cortex)
	}
	if _, exists := node.cortices[output]; !exists {
		c.size++
	}
	node.cortices[output] = cortex
}
