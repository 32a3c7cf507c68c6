package feed

import (
	"net/url"
	"strings"
)

// ProxyMode selects how article links are rewritten before being opened in a
// browser. Rewriting applies only at link-open time, never to the feed fetch
// itself.
type ProxyMode string

const (
	ProxyModeNone ProxyMode = ""
	// ProxyModePrefix prepends a configured string unless already present,
	// e.g. an EZproxy login URL.
	ProxyModePrefix ProxyMode = "prefix"
	// ProxyModeDomain rewrites the host by replacing dots with dashes and
	// appending a configured root domain, the WebVPN convention:
	// www.nejm.org -> www-nejm-org.proxy.example.edu.
	ProxyModeDomain ProxyMode = "domain"
)

// ProxyPolicy rewrites article URLs for institutional access.
type ProxyPolicy struct {
	Mode       ProxyMode
	Prefix     string
	RootDomain string
}

// Rewrite applies the policy to a link. Unparsable links and unconfigured
// policies pass through unchanged.
func (p ProxyPolicy) Rewrite(link string) string {
	switch p.Mode {
	case ProxyModePrefix:
		if p.Prefix == "" || strings.HasPrefix(link, p.Prefix) {
			return link
		}
		return p.Prefix + link
	case ProxyModeDomain:
		if p.RootDomain == "" {
			return link
		}
		u, err := url.Parse(link)
		if err != nil || u.Host == "" {
			return link
		}
		u.Host = strings.ReplaceAll(u.Hostname(), ".", "-") + "." + p.RootDomain
		return u.String()
	default:
		return link
	}
}
