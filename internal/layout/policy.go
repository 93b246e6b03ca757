package layout

import "fmt"

// Kind selects which automation manages a workspace.
type Kind string

const (
	// KindSpiral splits each focused window along its longer edge.
	KindSpiral Kind = "spiral"
	// KindStackMain keeps one main window beside a stack of the rest.
	KindStackMain Kind = "stack-main"
	// KindManual disables automation for the workspace.
	KindManual Kind = "manual"
)

// Arrangement is how the stack region presents multiple windows.
type Arrangement string

const (
	ArrangementTabbed  Arrangement = "tabbed"
	ArrangementStacked Arrangement = "stacked"
	ArrangementTiled   Arrangement = "tiled"
)

// ParseArrangement validates a stack arrangement name.
func ParseArrangement(s string) (Arrangement, error) {
	switch Arrangement(s) {
	case ArrangementTabbed, ArrangementStacked, ArrangementTiled:
		return Arrangement(s), nil
	}
	return "", fmt.Errorf("unknown stack layout %q (want tabbed, stacked or tiled)", s)
}

// Policy is the layout policy of one workspace. Size and Stack are only
// meaningful for KindStackMain. Policies compare by value: two policies are
// the same configuration exactly when they are ==.
type Policy struct {
	Kind  Kind
	Size  int
	Stack Arrangement
}

// Spiral returns the spiral policy.
func Spiral() Policy {
	return Policy{Kind: KindSpiral}
}

// Manual returns the no-automation policy.
func Manual() Policy {
	return Policy{Kind: KindManual}
}

// StackMain returns a stack-main policy with the given main size percentage
// and stack arrangement.
func StackMain(size int, stack Arrangement) Policy {
	return Policy{Kind: KindStackMain, Size: size, Stack: stack}
}

// Validate checks internal consistency of the policy.
func (p Policy) Validate() error {
	switch p.Kind {
	case KindSpiral, KindManual:
		return nil
	case KindStackMain:
		if p.Size < 0 || p.Size > 100 {
			return fmt.Errorf("stack-main size %d out of range 0-100", p.Size)
		}
		if _, err := ParseArrangement(string(p.Stack)); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("unknown layout %q", p.Kind)
}

func (p Policy) String() string {
	if p.Kind == KindStackMain {
		return fmt.Sprintf("stack-main(size=%d, stack=%s)", p.Size, p.Stack)
	}
	return string(p.Kind)
}
