package ipc

// Rect is a pixel rectangle as reported by the compositor.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Node types within the tree.
const (
	NodeRoot        = "root"
	NodeOutput      = "output"
	NodeWorkspace   = "workspace"
	NodeCon         = "con"
	NodeFloatingCon = "floating_con"
)

// Container layouts.
const (
	LayoutSplitH  = "splith"
	LayoutSplitV  = "splitv"
	LayoutTabbed  = "tabbed"
	LayoutStacked = "stacked"
)

// Node is one element of the compositor tree snapshot. Snapshots are
// read-only views; a node id may reference a container that has since been
// destroyed, so lookups by id must treat absence as a stale reference.
type Node struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Type             string            `json:"type"`
	Layout           string            `json:"layout"`
	Orientation      string            `json:"orientation"`
	Num              int               `json:"num"`
	Rect             Rect              `json:"rect"`
	Focused          bool              `json:"focused"`
	Visible          bool              `json:"visible"`
	FullscreenMode   int               `json:"fullscreen_mode"`
	AppID            string            `json:"app_id"`
	Marks            []string          `json:"marks"`
	WindowProperties *WindowProperties `json:"window_properties"`
	Nodes            []*Node           `json:"nodes"`
	FloatingNodes    []*Node           `json:"floating_nodes"`
}

// WindowProperties carries X11 attributes for xwayland views.
type WindowProperties struct {
	Class    string `json:"class"`
	Instance string `json:"instance"`
	Title    string `json:"title"`
}

// Workspace is one entry of the workspace list reply.
type Workspace struct {
	ID      int64  `json:"id"`
	Num     int    `json:"num"`
	Name    string `json:"name"`
	Focused bool   `json:"focused"`
	Visible bool   `json:"visible"`
	Output  string `json:"output"`
}

// Window event change kinds.
const (
	ChangeNew        = "new"
	ChangeClose      = "close"
	ChangeFocus      = "focus"
	ChangeMove       = "move"
	ChangeFloating   = "floating"
	ChangeFullscreen = "fullscreen_mode"
	ChangeTitle      = "title"
)

// WindowEvent is a window change notification from the event stream. Events
// are immutable once received and may be handed to multiple consumers.
type WindowEvent struct {
	Change    string `json:"change"`
	Container Node   `json:"container"`
}

// CommandResult reports the outcome of one command clause.
type CommandResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
