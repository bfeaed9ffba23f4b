package entity

import "net/url"

// Target identifies one renderable (kind, story) pair of the catalog.
// Targets are immutable once discovered.
type Target struct {
	Kind  string `json:"kind"`
	Story string `json:"story"`
	URL   string `json:"url"`
}

// NewTarget builds a Target with its navigable URL. The query-parameter
// contract (selectedKind/selectedStory) is what the catalog's client-side
// router dispatches on and must not change.
func NewTarget(endpoint, kind, story string) Target {
	q := url.Values{}
	q.Set("selectedKind", kind)
	q.Set("selectedStory", story)
	return Target{
		Kind:  kind,
		Story: story,
		URL:   endpoint + "?" + q.Encode(),
	}
}

// Name returns the display identity of the target.
func (t Target) Name() string {
	return t.Kind + "/" + t.Story
}
