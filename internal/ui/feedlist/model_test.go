package feedlist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/nhle/notifeed/internal/feed"
	"github.com/nhle/notifeed/internal/keys"
	"github.com/nhle/notifeed/internal/model"
)

type fakeAPI struct {
	mu      sync.Mutex
	items   []model.Notification
	listErr error
	targets []model.QueryTarget
}

func (f *fakeAPI) List(_ context.Context, target model.QueryTarget) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Notification
	for _, n := range f.items {
		if target.Kind == model.TargetUnread && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeAPI) MarkRead(_ context.Context, id model.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].Read = true
		}
	}
	return nil
}

func (f *fakeAPI) MarkAllRead(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		f.items[i].Read = true
	}
	return nil
}

func (f *fakeAPI) GenerateDynamic(context.Context) error { return nil }

func (f *fakeAPI) lastTarget() model.QueryTarget {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.targets[len(f.targets)-1]
}

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func sampleItems() []model.Notification {
	now := fixedNow
	return []model.Notification{
		{ID: "1", Type: model.TypeWeather, Title: "Storm warning", Message: "Gusts expected", CreatedAt: now},
		{ID: "2", Type: model.TypePlant, Title: "Bloom update", Message: "Wildflowers", CreatedAt: now.Add(-36 * time.Hour), Read: true},
		{ID: "3", Type: model.TypeAnimal, Title: "Bear sighting", Message: "Store food", CreatedAt: now.Add(-5 * 24 * time.Hour)},
	}
}

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// drain runs cmd and every command it batches, feeding each message back
// into the model.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return m
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			m = drain(t, m, c)
		}
	case FetchedMsg, NoticeMsg:
		var next tea.Cmd
		m, next = m.Update(msg)
		m = drain(t, m, next)
	}
	return m
}

func loaded(t *testing.T, api *fakeAPI) Model {
	t.Helper()
	ctrl := feed.New(api)
	m := New(ctrl, keys.DefaultKeyMap(), time.Second, 100, 30).
		WithClock(func() time.Time { return fixedNow })
	return drain(t, m, m.fetch(ctrl.StartFetch()))
}

func TestLoadRendersRoster(t *testing.T) {
	m := loaded(t, &fakeAPI{items: sampleItems()})

	snap := m.Snapshot()
	require.Equal(t, feed.StatusReady, snap.Status)
	require.Equal(t, 2, snap.UnreadCount())

	view := m.View()
	require.Contains(t, view, "Storm warning")
	require.Contains(t, view, "Today")
	require.Contains(t, view, "Yesterday")
	require.Contains(t, view, "4 days ago")
	require.NotContains(t, view, "5 days ago")
}

func TestViewDateFollowsClock(t *testing.T) {
	m := loaded(t, &fakeAPI{items: sampleItems()})

	m = m.WithClock(func() time.Time { return fixedNow.Add(time.Hour) })
	view := m.View()
	require.Contains(t, view, "5 days ago")
	require.NotContains(t, view, "4 days ago")
}

func TestToggleUnreadRequestsUnreadTarget(t *testing.T) {
	api := &fakeAPI{items: sampleItems()}
	m := loaded(t, api)

	m, cmd := m.Update(keyPress("u"))
	m = drain(t, m, cmd)

	require.Equal(t, model.TargetUnread, api.lastTarget().Kind)
	require.True(t, m.Snapshot().Filter.UnreadOnly)
	require.Len(t, m.Snapshot().Roster, 2)
}

func TestCycleTypeRequestsTypeTarget(t *testing.T) {
	api := &fakeAPI{items: sampleItems()}
	m := loaded(t, api)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	drain(t, m, cmd)

	require.Equal(t, model.QueryTarget{Kind: model.TargetType, Type: model.TypeAnimal}, api.lastTarget())
}

func TestMarkReadSelected(t *testing.T) {
	m := loaded(t, &fakeAPI{items: sampleItems()})

	m, cmd := m.Update(keyPress("m"))
	m = drain(t, m, cmd)

	snap := m.Snapshot()
	require.True(t, snap.Roster[0].Read)
	require.Equal(t, 1, snap.UnreadCount())
}

func TestMarkAllRead(t *testing.T) {
	m := loaded(t, &fakeAPI{items: sampleItems()})

	m, cmd := m.Update(keyPress("M"))
	m = drain(t, m, cmd)

	require.Zero(t, m.Snapshot().UnreadCount())
}

func TestFetchErrorShowsBannerAndKeepsRoster(t *testing.T) {
	api := &fakeAPI{items: sampleItems()}
	m := loaded(t, api)

	api.mu.Lock()
	api.listErr = errors.New("connection refused")
	api.mu.Unlock()

	m, cmd := m.Update(keyPress("r"))
	m = drain(t, m, cmd)

	view := m.View()
	require.Contains(t, view, "Failed to load notifications")
	require.Contains(t, view, "press r to retry")
	require.Contains(t, view, "Storm warning")
}

func TestEmptyStateWithFilter(t *testing.T) {
	m := loaded(t, &fakeAPI{})
	require.Contains(t, m.View(), "Press g to generate")

	m, cmd := m.Update(keyPress("u"))
	m = drain(t, m, cmd)
	require.Contains(t, m.View(), "No notifications match this filter.")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "hello", truncate("hello", 10))
	require.Equal(t, "hel…", truncate("hello", 4))
	require.Equal(t, "a b", truncate("a\nb", 10))
	require.Equal(t, "…", truncate("hello", 1))
}

func TestRenderItemUnreadMarker(t *testing.T) {
	now := time.Now()
	unread := renderItem(model.Notification{Title: "x", Type: model.TypeMedical, CreatedAt: now}, now, 80, false)
	read := renderItem(model.Notification{Title: "x", Type: model.TypeMedical, CreatedAt: now, Read: true}, now, 80, false)

	require.True(t, strings.Contains(unread, "●"))
	require.False(t, strings.Contains(read, "●"))
	require.Contains(t, unread, "Medical")
}
