package logctx

import (
	"fmt"
	"sync/atomic"
)

// Capability names a class of guarded operations.
type Capability uint8

const (
	// CapabilityControl guards mutation of an existing context:
	// attachments, level registration, logger configuration, and the close
	// handler set.
	CapabilityControl Capability = iota

	// CapabilityCreateContext guards creation of new contexts.
	CapabilityCreateContext

	// CapabilitySetSelector guards replacement of the process-wide
	// selector.
	CapabilitySetSelector
)

func (c Capability) String() string {
	switch c {
	case CapabilityControl:
		return "control"
	case CapabilityCreateContext:
		return "create-context"
	case CapabilitySetSelector:
		return "set-selector"
	default:
		return "unknown"
	}
}

// AccessPolicy decides whether calling code may exercise a capability. The
// policy is consulted before any state is touched, so a denial always
// leaves the context unchanged.
type AccessPolicy interface {
	Check(c Capability) error
}

// AccessPolicyFunc adapts a function to AccessPolicy.
type AccessPolicyFunc func(Capability) error

func (f AccessPolicyFunc) Check(c Capability) error { return f(c) }

type policyHolder struct{ p AccessPolicy }

var allowAll = &policyHolder{p: AccessPolicyFunc(func(Capability) error { return nil })}

var accessPolicy atomic.Pointer[policyHolder]

func init() { accessPolicy.Store(allowAll) }

// SetAccessPolicy installs the process-wide policy. A nil policy restores
// the default allow-all behavior. Installing a policy is itself unguarded;
// do it during program start-up.
func SetAccessPolicy(p AccessPolicy) {
	if p == nil {
		accessPolicy.Store(allowAll)
		return
	}
	accessPolicy.Store(&policyHolder{p: p})
}

func checkAccess(c Capability) error {
	if err := accessPolicy.Load().p.Check(c); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrAccessDenied, c, err)
	}
	return nil
}
