package postgres

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

const maxTracedQueryLength = 512

// NormalizeDSN returns the connection string as a postgres:// URL. Both
// lib/pq and the migration driver accept it; the migration driver rejects
// the key=value form, so that form is rewritten.
func NormalizeDSN(raw string, disablePreparedBinaryResult bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("database url is empty")
	}

	var (
		parsed *url.URL
		err    error
	)
	if strings.Contains(raw, "://") {
		parsed, err = url.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("parse database url: %w", err)
		}
	} else {
		parsed, err = urlFromKeyValueDSN(raw)
		if err != nil {
			return "", err
		}
	}

	if disablePreparedBinaryResult {
		query := parsed.Query()
		if query.Get("disable_prepared_binary_result") == "" {
			query.Set("disable_prepared_binary_result", "yes")
			parsed.RawQuery = query.Encode()
		}
	}
	return parsed.String(), nil
}

// DatabaseName extracts the database name from a URL produced by NormalizeDSN.
func DatabaseName(dsn string) string {
	parsed, err := url.Parse(strings.TrimSpace(dsn))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Path, "/")
}

// TraceQuery collapses whitespace and caps the length of a statement
// before it is attached to a span.
func TraceQuery(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}

func urlFromKeyValueDSN(raw string) (*url.URL, error) {
	pairs, err := splitKeyValueDSN(raw)
	if err != nil {
		return nil, err
	}

	out := &url.URL{Scheme: "postgres"}
	query := url.Values{}
	var host, port, user, password string
	var hasPassword bool
	for _, kv := range pairs {
		switch kv[0] {
		case "host":
			host = kv[1]
		case "port":
			port = kv[1]
		case "user":
			user = kv[1]
		case "password":
			password, hasPassword = kv[1], true
		case "dbname":
			out.Path = "/" + kv[1]
		default:
			query.Set(kv[0], kv[1])
		}
	}

	switch {
	case strings.HasPrefix(host, "/"):
		// unix socket directory
		query.Set("host", host)
		if port != "" {
			query.Set("port", port)
		}
	case host != "" && port != "":
		out.Host = net.JoinHostPort(host, port)
	case host != "":
		out.Host = host
	case port != "":
		out.Host = net.JoinHostPort("localhost", port)
	}

	if user != "" {
		if hasPassword {
			out.User = url.UserPassword(user, password)
		} else {
			out.User = url.User(user)
		}
	}
	out.RawQuery = query.Encode()
	return out, nil
}

// splitKeyValueDSN tokenizes `key=value key='quoted value'` pairs in the
// libpq style, honoring backslash escapes inside quotes.
func splitKeyValueDSN(raw string) ([][2]string, error) {
	var pairs [][2]string
	rest := strings.TrimSpace(raw)
	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq <= 0 {
			return nil, fmt.Errorf("invalid database dsn near %q", rest)
		}
		key := strings.TrimSpace(rest[:eq])
		rest = strings.TrimLeft(rest[eq+1:], " ")

		var value strings.Builder
		if strings.HasPrefix(rest, "'") {
			closed := false
			i := 1
			for ; i < len(rest); i++ {
				ch := rest[i]
				if ch == '\\' && i+1 < len(rest) {
					i++
					value.WriteByte(rest[i])
					continue
				}
				if ch == '\'' {
					closed = true
					break
				}
				value.WriteByte(ch)
			}
			if !closed {
				return nil, fmt.Errorf("unterminated quoted value for %q", key)
			}
			rest = rest[i+1:]
		} else {
			end := strings.IndexAny(rest, " \t")
			if end < 0 {
				end = len(rest)
			}
			value.WriteString(rest[:end])
			rest = rest[end:]
		}

		pairs = append(pairs, [2]string{key, value.String()})
		rest = strings.TrimSpace(rest)
	}
	return pairs, nil
}
