// Package headers builds and inspects the header sets passed to the send endpoint.
package headers

import (
	"fmt"
	"sort"
	"strings"
)

// Header names used by the push gateway.
const (
	Authorization = "Authorization"
	ContentType   = "Content-Type"
)

// RemoteMessage returns the header set the push gateway expects for a
// legacy server key: "Authorization: key=<serverKey>" and a JSON content type.
func RemoteMessage(serverKey string) map[string]string {
	return map[string]string{
		Authorization: "key=" + serverKey,
		ContentType:   "application/json",
	}
}

// Parse reads "Name: value" or "Name=value" entries into a header set.
// Later entries replace earlier ones with the same name. Values may be empty.
func Parse(entries []string) (map[string]string, error) {
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		name, value, ok := split(entry)
		if !ok {
			return nil, fmt.Errorf("parse header %q: expected \"Name: value\" or \"Name=value\"", entry)
		}
		out[name] = value
	}
	return out, nil
}

func split(entry string) (string, string, bool) {
	i := strings.IndexAny(entry, ":=")
	if i <= 0 {
		return "", "", false
	}
	name := strings.TrimSpace(entry[:i])
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(entry[i+1:]), true
}

// Merge returns a new set holding every entry of sets; later sets win.
func Merge(sets ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, s := range sets {
		for k, v := range s {
			out[k] = v
		}
	}
	return out
}

// Clone copies h. A nil set yields an empty, non-nil set.
func Clone(h map[string]string) map[string]string {
	return Merge(h)
}

// Names returns the header names of h in sorted order.
func Names(h map[string]string) []string {
	names := make([]string, 0, len(h))
	for k := range h {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Redact returns a copy of h with credential values masked.
func Redact(h map[string]string) map[string]string {
	out := Clone(h)
	for k, v := range out {
		if sensitive(k) && v != "" {
			out[k] = "*****"
		}
	}
	return out
}

func sensitive(name string) bool {
	n := strings.ToLower(name)
	return n == "authorization" ||
		n == "proxy-authorization" ||
		n == "cookie" ||
		strings.Contains(n, "token") ||
		strings.Contains(n, "api-key") ||
		strings.Contains(n, "secret")
}
