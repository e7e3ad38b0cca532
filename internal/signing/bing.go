package signing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	bingIGRegexp    = regexp.MustCompile(`IG:"([^"]+)"`)
	bingIIDRegexp   = regexp.MustCompile(`data-iid="([^"]+)"`)
	bingTokenRegexp = regexp.MustCompile(`params_AbusePreventionHelper\s*=\s*\[([^\]]+)\]`)
)

// BingCredentials is the scraped {ig, iid, token, expiry} tuple spec §4.3
// requires for the Bing translator's signing step.
type BingCredentials struct {
	IG        string
	IID       string
	Token     string
	TimeStamp string
	ExpiresMS int64
}

// ScrapeBingCredentials extracts IG, IID and the AbusePreventionHelper
// triple from the HTML body of GET {host}/translator, per spec §4.3. It
// returns an error naming which credential could not be found so the
// provider can surface "Failed to extract ... credentials".
func ScrapeBingCredentials(html string) (BingCredentials, error) {
	var missing []string

	ig := firstSubmatch(bingIGRegexp, html)
	if ig == "" {
		missing = append(missing, "IG")
	}
	iid := firstSubmatch(bingIIDRegexp, html)
	if iid == "" {
		missing = append(missing, "IID")
	}

	helperMatch := bingTokenRegexp.FindStringSubmatch(html)
	var ts, token string
	var expires int64
	if len(helperMatch) == 2 {
		parts := splitHelperArgs(helperMatch[1])
		if len(parts) == 3 {
			ts = parts[0]
			token = parts[1]
			expires, _ = strconv.ParseInt(parts[2], 10, 64)
		}
	}
	if token == "" {
		missing = append(missing, "token")
	}

	if len(missing) > 0 {
		return BingCredentials{}, fmt.Errorf("failed to extract %v credentials", missing)
	}

	return BingCredentials{IG: ig, IID: iid, Token: token, TimeStamp: ts, ExpiresMS: expires}, nil
}

func firstSubmatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// splitHelperArgs splits the three comma-separated literal arguments of
// params_AbusePreventionHelper = [ts,"token",expiryMs], stripping quotes.
func splitHelperArgs(raw string) []string {
	var parts []string
	var cur []rune
	inQuote := false
	for _, r := range raw {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			parts = append(parts, string(cur))
			cur = cur[:0]
		default:
			cur = append(cur, r)
		}
	}
	parts = append(parts, string(cur))
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
