package server

import (
	"errors"
	"fmt"
	"net"
)

// FallbackAddrs are tried in order when no listen address is configured.
// Port 5000 is often taken by the macOS AirPlay receiver.
var FallbackAddrs = []string{":5000", ":8080", ":8888"}

// ListenWithFallback listens on addr. An empty addr tries FallbackAddrs and
// binds the first one that is free; an explicit addr never falls back.
func ListenWithFallback(addr string) (net.Listener, error) {
	if addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
		return ln, nil
	}
	return listenFirst(FallbackAddrs)
}

func listenFirst(addrs []string) (net.Listener, error) {
	var errs []error
	for _, addr := range addrs {
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			return ln, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no listen address configured")
	}
	return nil, fmt.Errorf("all fallback ports are in use: %w", errors.Join(errs...))
}
