// ABOUTME: SSH+SOCKS5 dial function for reaching Postgres through a bastion
// ABOUTME: Parses DB_ALL_PROXY URLs of the form ssh+socks5://user@host:port?private-key=/path

package store

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	proxy "github.com/cloudfoundry/socks5-proxy"
)

// socks5DialContextFunc builds a dial function that tunnels connections
// through an SSH+SOCKS5 proxy. The SSH connection is established lazily on
// the first dial and reused afterwards.
func socks5DialContextFunc(allProxy string) (func(ctx context.Context, network, address string) (net.Conn, error), error) {
	allProxy = strings.TrimPrefix(allProxy, "ssh+")

	proxyURL, err := url.Parse(allProxy)
	if err != nil {
		return nil, fmt.Errorf("parse DB_ALL_PROXY URL: %w", err)
	}

	queryMap, err := url.ParseQuery(proxyURL.RawQuery)
	if err != nil {
		return nil, fmt.Errorf("parse DB_ALL_PROXY query params: %w", err)
	}

	username := ""
	if proxyURL.User != nil {
		username = proxyURL.User.Username()
	}

	keyPath := queryMap.Get("private-key")
	if keyPath == "" {
		return nil, fmt.Errorf("DB_ALL_PROXY missing required 'private-key' query param")
	}

	sshKey, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("read SSH private key %s: %w", keyPath, err)
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		haveDialer := dialer != nil
		mut.RUnlock()

		if haveDialer {
			return dialer(network, address)
		}

		mut.Lock()
		defer mut.Unlock()
		if dialer == nil {
			proxyDialer, err := socks5Proxy.Dialer(username, string(sshKey), proxyURL.Host)
			if err != nil {
				return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
			}
			dialer = proxyDialer
		}
		return dialer(network, address)
	}, nil
}
