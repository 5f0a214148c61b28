// Package bluemonday implements preview.Sanitizer using a bluemonday UGC
// policy extended with the attributes the preview relies on.
package bluemonday

import (
	"regexp"

	"github.com/fwojciec/preview"
	"github.com/microcosm-cc/bluemonday"
)

var _ preview.Sanitizer = (*Sanitizer)(nil)

var sourceLine = regexp.MustCompile(`^[0-9]+$`)

// Sanitizer strips unsafe markup. Source-line tags, classes, task list
// checkboxes and heading ids survive.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New returns a Sanitizer built on bluemonday.UGCPolicy.
func New() *Sanitizer {
	p := bluemonday.UGCPolicy()
	// Hashtag and heading links stay as rendered; only external links
	// get rel="nofollow".
	p.RequireNoFollowOnLinks(false)
	p.RequireNoFollowOnFullyQualifiedLinks(true)
	p.AllowStyling()
	p.AllowAttrs(preview.AttrSourceLine).Matching(sourceLine).Globally()
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowAttrs("align").Matching(regexp.MustCompile(`^(left|right|center)$`)).OnElements("th", "td")
	return &Sanitizer{policy: p}
}

// Sanitize returns the policy-filtered markup.
func (s *Sanitizer) Sanitize(markup []byte) []byte {
	return s.policy.SanitizeBytes(markup)
}
