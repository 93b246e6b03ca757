package layout

// Reserved workspaces that the daemon never lays out automatically.
const (
	// TempWorkspace is the relocation target used while rebuilding a
	// workspace's arrangement.
	TempWorkspace = "◕‿◕"
	// ScratchpadWorkspace is the compositor's hidden scratchpad.
	ScratchpadWorkspace = "__i3_scratch"
)

// ReservedWorkspace reports whether a workspace name belongs to the daemon
// or the compositor rather than the user.
func ReservedWorkspace(name string) bool {
	return name == TempWorkspace || name == ScratchpadWorkspace
}
