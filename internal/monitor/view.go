package monitor

// View tracks which source the dashboard shows: the local process table or
// one remote host by registry index. Disabled hosts stay in the rotation.
type View struct {
	localEnabled bool
	hostCount    int
	local        bool
	remote       int
}

// NewView starts on Local when local collection is on, else on the first host.
func NewView(localEnabled bool, hostCount int) *View {
	return &View{
		localEnabled: localEnabled,
		hostCount:    hostCount,
		local:        localEnabled,
	}
}

// Cycle advances Local -> Remote(0) -> ... -> Remote(n-1) and wraps around
// to Local, or to Remote(0) when local collection is off.
func (v *View) Cycle() {
	switch {
	case v.hostCount == 0:
		// Nothing to rotate through.
	case v.local:
		v.local = false
		v.remote = 0
	case v.remote+1 < v.hostCount:
		v.remote++
	case v.localEnabled:
		v.local = true
		v.remote = 0
	default:
		v.remote = 0
	}
}

// IsLocal reports whether the local source is selected.
func (v *View) IsLocal() bool {
	return v.local
}

// Remote returns the selected host index, or false when on Local.
func (v *View) Remote() (int, bool) {
	if v.local || v.hostCount == 0 {
		return 0, false
	}
	return v.remote, true
}

// Label names the current source for the header. hostName maps a registry
// index to its display name.
func (v *View) Label(hostName func(int) string) string {
	if i, ok := v.Remote(); ok {
		return hostName(i)
	}
	return "local"
}
