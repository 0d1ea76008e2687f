package categories

import "github.com/qmedica/catalog-backend/pkg/db/models"

// Descendants returns rootID plus the id of every category reachable by
// following parent links downward. Selecting a parent category must also
// match products tagged only with its children, so list filters expand the
// chosen ids through this closure before building the IN predicate.
//
// The walk keeps a visited set; parent assignments come from concurrent
// admin edits, so a cycle must terminate rather than recurse forever.
func Descendants(all []models.Category, rootID uint) map[uint]struct{} {
	children := make(map[uint][]uint, len(all))
	for _, c := range all {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	result := map[uint]struct{}{rootID: {}}
	queue := []uint{rootID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if _, seen := result[child]; seen {
				continue
			}
			result[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	return result
}

// ExpandIDs applies Descendants to each selected id and unions the results.
func ExpandIDs(all []models.Category, selected []uint) []uint {
	union := map[uint]struct{}{}
	for _, id := range selected {
		for descendant := range Descendants(all, id) {
			union[descendant] = struct{}{}
		}
	}
	ids := make([]uint, 0, len(union))
	for id := range union {
		ids = append(ids, id)
	}
	return ids
}
