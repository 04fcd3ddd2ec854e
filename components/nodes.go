package components

import "github.com/go-gl/mathgl/mgl64"

// Node is a named sub-part of an entity's model that articulations drive.
type Node interface {
	SetLocalTranslation(t mgl64.Vec3)
	SetLocalRotation(q mgl64.Quat)
}

// NodeResolver looks up model nodes by name. A missing node is not an error.
type NodeResolver interface {
	Resolve(name string) (Node, bool)
}

// NodeTransform is a plain local transform for one node.
type NodeTransform struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
}

func (n *NodeTransform) SetLocalTranslation(t mgl64.Vec3) { n.Translation = t }
func (n *NodeTransform) SetLocalRotation(q mgl64.Quat)    { n.Rotation = q }

// NodeMap resolves nodes from a fixed name table.
type NodeMap map[string]*NodeTransform

// NewNodeMap creates identity transforms for each name.
func NewNodeMap(names ...string) NodeMap {
	m := make(NodeMap, len(names))
	for _, name := range names {
		m[name] = &NodeTransform{Rotation: mgl64.QuatIdent()}
	}
	return m
}

func (m NodeMap) Resolve(name string) (Node, bool) {
	n, ok := m[name]
	if !ok || n == nil {
		return nil, false
	}
	return n, true
}
