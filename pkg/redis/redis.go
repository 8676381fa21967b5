// Package redispkg builds go-redis clients from REDIS_URL-style strings.
package redispkg

import (
	"crypto/tls"
	"net/url"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

const defaultAddr = "redis:6379"

// ParseRedisURL splits a REDIS_URL into address, password, database number
// and whether TLS is requested. It accepts a plain `host:port` or a
// `redis://` / `rediss://` URL.
func ParseRedisURL(raw string) (addr, password string, db int, useTLS bool) {
	if raw == "" {
		return defaultAddr, "", 0, false
	}

	addr = raw
	if strings.HasPrefix(raw, "redis://") || strings.HasPrefix(raw, "rediss://") {
		useTLS = strings.HasPrefix(raw, "rediss://")
		if u, err := url.Parse(raw); err == nil {
			addr = u.Host
			if u.User != nil {
				if pw, ok := u.User.Password(); ok {
					password = pw
				}
			}
			if p := strings.Trim(u.Path, "/"); p != "" {
				if dbn, err := strconv.Atoi(p); err == nil {
					db = dbn
				}
			}
		}
	}
	return addr, password, db, useTLS
}

// NewOptions converts a REDIS_URL into client options. Maintenance
// notifications are disabled to avoid handshake attempts on servers that
// don't implement the subcommand.
func NewOptions(raw string) *redis.Options {
	addr, password, db, useTLS := ParseRedisURL(raw)
	opts := &redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}
	if useTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	opts.MaintNotificationsConfig = &maintnotifications.Config{Mode: maintnotifications.ModeDisabled}
	return opts
}

// NewClient builds a redis client from a REDIS_URL-like string. It does not
// contact the server.
func NewClient(raw string) *redis.Client {
	return redis.NewClient(NewOptions(raw))
}
