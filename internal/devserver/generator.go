package devserver

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/nhle/notifeed/internal/model"
)

type template struct {
	title   string
	message string
}

var templates = map[model.Type][]template{
	model.TypeAnimal: {
		{"Deer near the trailhead", "A group of %d deer was reported near the north trailhead."},
		{"Bear sighting", "A black bear was seen %d km from the campsite. Store food securely."},
		{"Nesting season", "%d new nests logged in the wetland survey area."},
	},
	model.TypePlant: {
		{"Invasive species alert", "Knotweed found at %d new locations along the river."},
		{"Bloom update", "Wildflowers are peaking; %d species recorded this week."},
	},
	model.TypeWeather: {
		{"Storm warning", "Gusts up to %d km/h expected this afternoon."},
		{"Frost advisory", "Overnight lows near -%d°C. Protect seedlings."},
		{"Heat advisory", "Temperatures above %d°C forecast for the weekend."},
	},
	model.TypeMedical: {
		{"Tick season", "%d tick-borne illness cases reported in the region this month."},
		{"Pollen count high", "Pollen index at %d. Carry allergy medication."},
	},
	model.TypeOther: {
		{"Trail maintenance", "Section %d of the loop trail is closed for repairs."},
	},
}

// Generator synthesises plausible notifications for generate-dynamic.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator returns a generator seeded for reproducible output.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

// Generate returns between 1 and 3 new notifications stamped now.
func (g *Generator) Generate() []model.Notification {
	g.mu.Lock()
	defer g.mu.Unlock()

	count := 1 + g.rng.IntN(3)
	now := g.now()
	items := make([]model.Notification, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, g.one(now.Add(-time.Duration(i)*time.Second)))
	}
	return items
}

// Backfill returns n notifications spread over the past month, oldest
// last, for seeding an empty database.
func (g *Generator) Backfill(n int) []model.Notification {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	items := make([]model.Notification, 0, n)
	for i := 0; i < n; i++ {
		age := time.Duration(g.rng.Int64N(int64(30 * 24 * time.Hour)))
		item := g.one(now.Add(-age))
		item.Read = g.rng.IntN(3) == 0
		items = append(items, item)
	}
	return items
}

func (g *Generator) one(at time.Time) model.Notification {
	typ := model.Types[g.rng.IntN(len(model.Types))]
	options := templates[typ]
	tpl := options[g.rng.IntN(len(options))]
	return model.Notification{
		Type:      typ,
		Title:     tpl.title,
		Message:   fmt.Sprintf(tpl.message, 2+g.rng.IntN(40)),
		CreatedAt: at,
	}
}
