package browser

import (
	"fmt"

	"github.com/catalogaudit/storybook-a11y-go/internal/domain/entity"
)

// StoryKind mirrors one entry of the catalog's client-side inventory API:
// [{kind: string, stories: [{name: string}]}].
type StoryKind struct {
	Kind    string `json:"kind"`
	Stories []struct {
		Name string `json:"name"`
	} `json:"stories"`
}

// TargetsFromInventory maps the raw catalog inventory to the ordered target
// set, preserving the catalog's own ordering so discovery is deterministic
// for an unchanged catalog.
func TargetsFromInventory(endpoint string, inventory []StoryKind) ([]entity.Target, error) {
	targets := make([]entity.Target, 0, len(inventory))
	for _, group := range inventory {
		if group.Kind == "" {
			return nil, fmt.Errorf("inventory entry with empty kind")
		}
		for _, story := range group.Stories {
			if story.Name == "" {
				return nil, fmt.Errorf("kind %q has a story with an empty name", group.Kind)
			}
			targets = append(targets, entity.NewTarget(endpoint, group.Kind, story.Name))
		}
	}
	return targets, nil
}
