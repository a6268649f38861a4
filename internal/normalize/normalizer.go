package normalize

import (
	"github.com/nerrad567/gray-logic-hub/internal/slug"
)

// Normalizer converts records for one plugin namespace.
type Normalizer struct {
	tr slug.Translator
	ns string
}

// New creates a normalizer that assigns ids in namespace through tr.
func New(tr slug.Translator, namespace string) *Normalizer {
	return &Normalizer{tr: tr, ns: namespace}
}

// Namespace returns the plugin identity this normalizer serves.
func (n *Normalizer) Namespace() string {
	return n.ns
}
