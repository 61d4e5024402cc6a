// Utilities for lifting backend headers out of a copied cURL command.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

var (
	curlHeaderRegex = regexp.MustCompile(`(?:-H|--header)\s+(?:'([^']+)'|"([^"]+)")`)
	curlCookieRegex = regexp.MustCompile(`(?:-b|--cookie)\s+(?:'([^']+)'|"([^"]+)")`)
)

// Headers the HTTP client sets per request; copying them from a browser
// capture would corrupt multipart uploads.
var managedHeaders = map[string]bool{
	"content-type":    true,
	"content-length":  true,
	"accept-encoding": true,
	"host":            true,
	"connection":      true,
}

// CurlHeaders represents parsed headers and cookies from a cURL command.
type CurlHeaders struct {
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts headers.
func ParseCurlFile(path string) (*CurlHeaders, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}
	return ParseCurlCommand(string(content))
}

// ParseCurlCommand parses a cURL command string and extracts headers.
//
// A cookie given with -b wins over a Cookie header.
func ParseCurlCommand(cmd string) (*CurlHeaders, error) {
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\", "")

	out := &CurlHeaders{Headers: make(map[string]string)}
	var headerCookie string

	for _, match := range curlHeaderRegex.FindAllStringSubmatch(cmd, -1) {
		key, value, ok := strings.Cut(firstNonEmpty(match[1], match[2]), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if strings.EqualFold(key, "cookie") {
			if headerCookie == "" {
				headerCookie = value
			}
			continue
		}
		out.Headers[key] = value
	}

	if m := curlCookieRegex.FindStringSubmatch(cmd); m != nil {
		out.Cookie = firstNonEmpty(m[1], m[2])
	} else {
		out.Cookie = headerCookie
	}

	if len(out.Headers) == 0 && out.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}
	return out, nil
}

// ForwardHeaders returns the headers to replay on backend requests, with
// client-managed headers removed and the cookie folded in.
func (c *CurlHeaders) ForwardHeaders() map[string]string {
	headers := make(map[string]string, len(c.Headers)+1)
	for k, v := range c.Headers {
		if managedHeaders[strings.ToLower(k)] {
			continue
		}
		headers[k] = v
	}
	if c.Cookie != "" {
		headers["Cookie"] = c.Cookie
	}
	return headers
}

// String renders the forwarded headers as sorted "Key: Value" lines.
func (c *CurlHeaders) String() string {
	fwd := c.ForwardHeaders()
	keys := make([]string, 0, len(fwd))
	for k := range fwd {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+": "+fwd[k])
	}
	return strings.Join(lines, "\n")
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
