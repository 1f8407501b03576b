package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/sirupsen/logrus"
)

// ServiceType is the DNS-SD type a NoteBoard backend advertises.
const ServiceType = "_noteboard._tcp"

// ErrNotFound is returned when no backend answered before the deadline.
var ErrNotFound = errors.New("no noteboard backend found on the local network")

// Discover browses the local network and returns the base URL of the first
// backend that answers within timeout.
func Discover(ctx context.Context, timeout time.Duration, logger logrus.FieldLogger) (string, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "discovery")

	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan string, 1)
	go func() {
		for e := range entries {
			u, ok := EntryURL(e)
			if !ok {
				logger.Debugf("ignoring incomplete entry %q", e.Name)
				continue
			}
			select {
			case found <- u:
			default:
			}
		}
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true

	queryErr := make(chan error, 1)
	go func() {
		err := mdns.Query(params)
		close(entries)
		queryErr <- err
	}()

	select {
	case u := <-found:
		logger.Infof("discovered backend at %s", u)
		return u, nil
	case err := <-queryErr:
		if err != nil {
			return "", fmt.Errorf("mdns query: %w", err)
		}
		select {
		case u := <-found:
			return u, nil
		default:
		}
		return "", ErrNotFound
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// EntryURL turns a service entry into a base URL. A TXT field "scheme=https"
// selects https and "path=/api" adds a path prefix.
func EntryURL(e *mdns.ServiceEntry) (string, bool) {
	if e == nil || e.Port == 0 {
		return "", false
	}
	host := ""
	switch {
	case e.AddrV4 != nil:
		host = e.AddrV4.String()
	case e.AddrV6 != nil:
		host = e.AddrV6.String()
	case e.Host != "":
		host = strings.TrimSuffix(e.Host, ".")
	default:
		return "", false
	}

	scheme, prefix := "http", ""
	for _, f := range e.InfoFields {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		switch strings.ToLower(k) {
		case "scheme":
			if v == "https" {
				scheme = v
			}
		case "path":
			prefix = "/" + strings.Trim(v, "/")
		}
	}
	return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(host, strconv.Itoa(e.Port)), prefix), true
}
