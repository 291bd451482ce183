package main

import (
	"sync"

	"github.com/irothenbaum/websocket-client/pkg/client"
)

// reloadablePolicy lets a config reload retarget the session without
// rebuilding it. Addresses are derived from whatever policy was stored last.
type reloadablePolicy struct {
	mu     sync.RWMutex
	policy client.DefaultAddressPolicy
}

func newReloadablePolicy(p client.DefaultAddressPolicy) *reloadablePolicy {
	return &reloadablePolicy{policy: p}
}

func (r *reloadablePolicy) Set(p client.DefaultAddressPolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policy = p
}

func (r *reloadablePolicy) ConnectAddress(code string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.policy.ConnectAddress(code)
}

func (r *reloadablePolicy) ReconnectAddress(code, token string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.policy.ReconnectAddress(code, token)
}

var _ client.AddressPolicy = (*reloadablePolicy)(nil)
