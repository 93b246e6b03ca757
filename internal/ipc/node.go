package ipc

// children returns tiled and floating children in one slice.
func (n *Node) children() []*Node {
	if len(n.FloatingNodes) == 0 {
		return n.Nodes
	}
	out := make([]*Node, 0, len(n.Nodes)+len(n.FloatingNodes))
	out = append(out, n.Nodes...)
	out = append(out, n.FloatingNodes...)
	return out
}

// FindByID returns the node with the given id, or nil when the snapshot no
// longer contains it (stale reference).
func (n *Node) FindByID(id int64) *Node {
	if n.ID == id {
		return n
	}
	for _, child := range n.children() {
		if found := child.FindByID(id); found != nil {
			return found
		}
	}
	return nil
}

// Find returns the first node matching the predicate in depth-first order.
func (n *Node) Find(match func(*Node) bool) *Node {
	if match(n) {
		return n
	}
	for _, child := range n.children() {
		if found := child.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// PathTo returns the chain of nodes from n down to the node with the given
// id, inclusive, or nil when the id is absent.
func (n *Node) PathTo(id int64) []*Node {
	if n.ID == id {
		return []*Node{n}
	}
	for _, child := range n.children() {
		if path := child.PathTo(id); path != nil {
			return append([]*Node{n}, path...)
		}
	}
	return nil
}

// FindParent returns the direct parent of the node with the given id.
func (n *Node) FindParent(id int64) *Node {
	path := n.PathTo(id)
	if len(path) < 2 {
		return nil
	}
	return path[len(path)-2]
}

// WorkspaceFor returns the workspace node hosting the node with the given
// id, or nil when the id is stale or lives outside any workspace.
func (n *Node) WorkspaceFor(id int64) *Node {
	var ws *Node
	for _, node := range n.PathTo(id) {
		if node.Type == NodeWorkspace {
			ws = node
		}
	}
	return ws
}

// OutputFor returns the output node hosting the node with the given id.
func (n *Node) OutputFor(id int64) *Node {
	var output *Node
	for _, node := range n.PathTo(id) {
		if node.Type == NodeOutput {
			output = node
		}
	}
	return output
}

// IsWindow reports whether the node is a view leaf.
func (n *Node) IsWindow() bool {
	if n.Type != NodeCon && n.Type != NodeFloatingCon {
		return false
	}
	return len(n.Nodes) == 0
}

// IsFloating reports whether the node itself is a floating container.
func (n *Node) IsFloating() bool {
	return n.Type == NodeFloatingCon
}

// IsFullscreen reports whether the node occupies its output.
func (n *Node) IsFullscreen() bool {
	return n.FullscreenMode != 0
}

// FloatingWithin reports whether the node with the given id, or any of its
// ancestors inside this subtree, floats.
func (n *Node) FloatingWithin(id int64) bool {
	for _, node := range n.PathTo(id) {
		if node.Type == NodeFloatingCon {
			return true
		}
	}
	return false
}

// Windows collects the view leaves of the subtree in tree order.
func (n *Node) Windows() []*Node {
	var windows []*Node
	var walk func(*Node)
	walk = func(node *Node) {
		if node.IsWindow() {
			windows = append(windows, node)
			return
		}
		for _, child := range node.children() {
			walk(child)
		}
	}
	walk(n)
	return windows
}

// FocusedWindow returns the focused view leaf of the subtree, or nil.
func (n *Node) FocusedWindow() *Node {
	return n.Find(func(node *Node) bool {
		return node.IsWindow() && node.Focused
	})
}

// VisibleWindows collects the currently visible view leaves of the subtree.
func (n *Node) VisibleWindows() []*Node {
	var visible []*Node
	for _, w := range n.Windows() {
		if w.Visible {
			visible = append(visible, w)
		}
	}
	return visible
}

// AppName returns the best human-readable application identifier for a view.
func (n *Node) AppName() string {
	if n.AppID != "" {
		return n.AppID
	}
	if n.WindowProperties != nil && n.WindowProperties.Class != "" {
		return n.WindowProperties.Class
	}
	return n.Name
}
