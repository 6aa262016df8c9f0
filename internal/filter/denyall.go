package filter

import "github.com/tkingovr/logfilter/api"

// DenyAllFilter drops every event. It is normally the last filter of a chain,
// rejecting whatever earlier filters did not explicitly accept.
type DenyAllFilter struct {
	link
}

func NewDenyAllFilter() *DenyAllFilter { return &DenyAllFilter{} }

func (f *DenyAllFilter) Name() string { return "deny_all" }

func (f *DenyAllFilter) Decide(*api.Event) api.Result { return api.ResultDeny }
