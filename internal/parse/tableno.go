package parse

import "net/url"

// TableNo extracts the table identifier from a QR code URL, e.g.
// "http://host/?table=7" -> "7". The second return is false when the URL
// does not parse or carries no table parameter.
func TableNo(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	t := u.Query().Get("table")
	if t == "" {
		return "", false
	}
	return t, true
}
