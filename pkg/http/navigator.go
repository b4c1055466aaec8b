package http

import (
	"context"
	"sync"
)

// Navigator performs the forced client-side navigation that follows a 401
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(ctx context.Context, path string)

// Navigate calls f(ctx, path)
func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	f(ctx, path)
}

// RecordingNavigator remembers the last forced navigation so a server-side
// caller can turn it into a redirect.
type RecordingNavigator struct {
	mu    sync.Mutex
	path  string
	count int
}

// Navigate records path
func (n *RecordingNavigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
	n.count++
}

// Last returns the most recent path and whether any navigation happened
func (n *RecordingNavigator) Last() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path, n.count > 0
}

// Count returns how many navigations were recorded
func (n *RecordingNavigator) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count
}
