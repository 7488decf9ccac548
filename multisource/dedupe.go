package multisource

import (
	"net/url"
	"sort"
	"strings"

	"github.com/use-agent/filmreview/models"
)

// CanonicalURL normalizes a URL for duplicate detection: lower-case scheme
// and host, no fragment, no default port, no trailing slash and no utm_*
// tracking parameters. Unparsable input is returned trimmed.
func CanonicalURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return strings.TrimSpace(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		host += ":" + port
	}
	u.Host = host
	u.Fragment = ""
	u.RawFragment = ""

	if u.RawQuery != "" {
		q := u.Query()
		for k := range q {
			if strings.HasPrefix(strings.ToLower(k), "utm_") {
				q.Del(k)
			}
		}
		u.RawQuery = q.Encode()
	}

	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String()
}

// Deduplicate keeps the first candidate per canonical URL and orders the
// survivors by descending confidence. Ties keep discovery order.
func Deduplicate(cands []models.ReviewCandidate) []models.ReviewCandidate {
	seen := make(map[string]struct{}, len(cands))
	out := make([]models.ReviewCandidate, 0, len(cands))
	for _, c := range cands {
		key := CanonicalURL(c.URL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
