package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pkordes/event-catalog/internal/domain"
	"github.com/pkordes/event-catalog/internal/repo"
)

// ResolveTags maps tag names to the ids of existing tags. Unknown names are
// skipped, not created and not reported. Repeated names and names resolving
// to the same tag collapse to one id. Ids keep the order names first appear.
func ResolveTags(ctx context.Context, tags repo.TagRepo, names []string) ([]int64, error) {
	ids := make([]int64, 0, len(names))
	seenName := make(map[string]bool, len(names))
	seenID := make(map[int64]bool, len(names))

	for _, name := range names {
		if name == "" || seenName[name] {
			continue
		}
		seenName[name] = true

		tag, err := tags.GetByName(ctx, name)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("service.ResolveTags: %w", err)
		}
		if seenID[tag.ID] {
			continue
		}
		seenID[tag.ID] = true
		ids = append(ids, tag.ID)
	}
	return ids, nil
}
