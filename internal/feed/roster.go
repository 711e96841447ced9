package feed

import "github.com/nhle/notifeed/internal/model"

// indexOf returns the position of id in roster, or -1.
func indexOf(roster []model.Notification, id model.ID) int {
	for i := range roster {
		if roster[i].ID == id {
			return i
		}
	}
	return -1
}

// markRead returns a copy of roster with the element id marked read.
// Snapshots handed out earlier keep their own backing array.
func markRead(roster []model.Notification, id model.ID) []model.Notification {
	i := indexOf(roster, id)
	if i < 0 || roster[i].Read {
		return roster
	}
	out := make([]model.Notification, len(roster))
	copy(out, roster)
	out[i].Read = true
	return out
}

// markAllRead returns a copy of roster with every element marked read.
func markAllRead(roster []model.Notification) []model.Notification {
	out := make([]model.Notification, len(roster))
	copy(out, roster)
	for i := range out {
		out[i].Read = true
	}
	return out
}

// dedupe keeps the first occurrence of each id, preserving server order.
func dedupe(items []model.Notification) []model.Notification {
	seen := make(map[model.ID]struct{}, len(items))
	out := make([]model.Notification, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
