package proxy

import (
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
)

// rewriteURL points origin at the inbound path and query. It also returns the
// origin's domain, which is empty (ok=false) for opaque URLs and IP literals.
func rewriteURL(origin string, in *url.URL) (u *url.URL, domain string, ok bool) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, "", false
	}
	u.Path = in.Path
	u.RawPath = in.RawPath
	u.RawQuery = in.RawQuery
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""

	domain = originDomain(u)
	if domain == "" {
		return nil, "", false
	}
	return u, domain, true
}

func originDomain(u *url.URL) string {
	h := u.Hostname()
	if h == "" || net.ParseIP(h) != nil {
		return ""
	}
	return strings.ToLower(h)
}

func cloneHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vv := range h {
		cc := make([]string, len(vv))
		copy(cc, vv)
		out[k] = cc
	}
	return out
}

func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		dst.Del(k)
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}

// Connection-scoped response headers; net/http frames the downstream reply itself.
var hopByHop = map[string]struct{}{
	"Connection":          {},
	"Proxy-Connection":    {},
	"Keep-Alive":          {},
	"Proxy-Authenticate":  {},
	"Proxy-Authorization": {},
	"TE":                  {},
	"Trailer":             {},
	"Transfer-Encoding":   {},
	"Upgrade":             {},
}

func dropHopByHop(h http.Header) {
	for _, f := range h.Values("Connection") {
		for _, k := range strings.Split(f, ",") {
			k = textproto.TrimString(k)
			if k != "" {
				h.Del(k)
			}
		}
	}
	for k := range hopByHop {
		h.Del(k)
	}
}
