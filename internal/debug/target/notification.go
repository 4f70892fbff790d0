package target

import (
	"fmt"
	"sync"
)

// Well-known diagnostic type the managed runtime exposes so a debugger can
// detect an evaluation thread blocking on another thread.
const (
	notificationOuterType = "System.Diagnostics.Debugger"
	notificationInnerType = "CrossThreadDependencyNotification"
)

// NotificationClass caches the resolved cross-thread dependency notification
// class. Resolution happens once per module load; calling Resolve again for a
// newer module replaces the cached class.
type NotificationClass struct {
	mu  sync.Mutex
	cls Class
}

// Resolve looks up the notification class in mod's metadata and caches it.
func (n *NotificationClass) Resolve(mod Module) error {
	// The outer type is known not to be nested itself, so no recursive
	// enclosing-class walk is needed.
	parent, err := mod.FindTypeDef(notificationOuterType, TypeTokenNil)
	if err != nil {
		return fmt.Errorf("find %s: %w", notificationOuterType, err)
	}

	tok, err := mod.FindTypeDef(notificationInnerType, parent)
	if err != nil {
		return fmt.Errorf("find %s: %w", notificationInnerType, err)
	}

	cls, err := mod.ClassFromToken(tok)
	if err != nil {
		return fmt.Errorf("resolve notification class: %w", err)
	}

	n.mu.Lock()
	n.cls = cls
	n.mu.Unlock()
	return nil
}

// Class returns the cached class and whether one has been resolved.
func (n *NotificationClass) Class() (Class, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cls, n.cls != nil
}
