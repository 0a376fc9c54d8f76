// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"slices"
	"strings"
)

// CSP source constants.
const (
	CSPSelf = "'self'"
	CSPNone = "'none'"
)

// The default Content-Security-Policy.
// Based on https://github.com/tailscale/tailscale/blob/4ad3f01225745294474f1ae0de33e5a86824a744/safeweb/http.go.
var defaultCSP = CSP{
	DefaultSrc:           []string{CSPSelf},
	ScriptSrc:            []string{CSPSelf},
	FrameAncestors:       []string{CSPNone},
	FormAction:           []string{CSPSelf},
	BaseURI:              []string{CSPSelf},
	ObjectSrc:            []string{CSPSelf},
	BlockAllMixedContent: true,
}

// CSP represents a Content Security Policy.
// The zero value is an empty policy.
//
// See https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Content-Security-Policy.
type CSP struct {
	DefaultSrc              []string
	ScriptSrc               []string
	StyleSrc                []string
	ImgSrc                  []string
	ConnectSrc              []string
	ObjectSrc               []string
	FormAction              []string
	FrameAncestors          []string
	BaseURI                 []string
	BlockAllMixedContent    bool
	UpgradeInsecureRequests bool
}

// String returns the CSP header value. Directives are sorted by name.
func (p CSP) String() string {
	var directives []string
	add := func(name string, sources []string) {
		if len(sources) > 0 {
			directives = append(directives, name+" "+strings.Join(sources, " "))
		}
	}
	flag := func(name string, set bool) {
		if set {
			directives = append(directives, name)
		}
	}

	add("default-src", p.DefaultSrc)
	add("script-src", p.ScriptSrc)
	add("style-src", p.StyleSrc)
	add("img-src", p.ImgSrc)
	add("connect-src", p.ConnectSrc)
	add("object-src", p.ObjectSrc)
	add("form-action", p.FormAction)
	add("frame-ancestors", p.FrameAncestors)
	add("base-uri", p.BaseURI)
	flag("block-all-mixed-content", p.BlockAllMixedContent)
	flag("upgrade-insecure-requests", p.UpgradeInsecureRequests)

	slices.Sort(directives)
	return strings.Join(directives, "; ")
}
