package lookup

import (
	"context"
	"math"
	"math/rand/v2"
	"strconv"
	"time"

	"addressbook/internal/addressbook/models"
)

// DefaultRegions maps the leading postcode digit to a city.
var DefaultRegions = map[int]string{
	1: "Brisbane",
	2: "Sydney",
	3: "Melbourne",
	4: "Gold Coast",
	5: "Toowomba",
	6: "Burleigh",
	7: "Byron Bay",
	8: "Geelong",
	9: "Warrnambool",
}

// DefaultStreets maps the leading house number digit to a street name.
var DefaultStreets = map[int]string{
	1: "Mary Street",
	2: "Edward Street",
	3: "Francesco Street",
	4: "Docklands Drive",
	5: "Elizabeth Street",
	6: "Black Spur Drive",
	7: "Grand Pacific Drive",
	8: "Paddys River Road",
	9: "Red Centre Way",
}

// houseNumberSteps are the offsets of the generated neighbours.
var houseNumberSteps = []uint64{0, 2, lastStep}

const lastStep = 4

// Generator is a mock address source keyed on leading digits. It is
// deterministic apart from coordinates.
type Generator struct {
	regions map[int]string
	streets map[int]string
	latency time.Duration
	coord   func() string
}

type GeneratorOption func(*Generator)

// WithRegions replaces the postcode region table.
func WithRegions(regions map[int]string) GeneratorOption {
	return func(g *Generator) {
		g.regions = regions
	}
}

// WithStreets replaces the house number street table.
func WithStreets(streets map[int]string) GeneratorOption {
	return func(g *Generator) {
		g.streets = streets
	}
}

// WithLatency delays successful lookups, emulating a remote service.
func WithLatency(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.latency = d
	}
}

// WithCoordinates overrides coordinate generation (tests use a fixed value).
func WithCoordinates(fn func() string) GeneratorOption {
	return func(g *Generator) {
		g.coord = fn
	}
}

// NewGenerator creates a Generator with the default tables.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		regions: DefaultRegions,
		streets: DefaultStreets,
		coord: func() string {
			return strconv.FormatFloat(rand.Float64(), 'f', -1, 64)
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Find returns three candidates on the same street (n, n+2, n+4) when the
// postcode's leading digit has a region, ErrNoResults otherwise. Candidates
// carry no id; Finder assigns ids.
func (g *Generator) Find(ctx context.Context, postcode, houseNumber string) ([]models.Candidate, error) {
	city, ok := g.regions[leadingDigit(postcode)]
	if !ok {
		return nil, ErrNoResults
	}
	base, err := strconv.ParseUint(houseNumber, 10, 64)
	if err != nil || base > math.MaxUint64-lastStep {
		return nil, ErrNoResults
	}
	street := g.streets[leadingDigit(houseNumber)]

	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	candidates := make([]models.Candidate, 0, len(houseNumberSteps))
	for i, step := range houseNumberSteps {
		number := houseNumber
		if i > 0 {
			number = strconv.FormatUint(base+step, 10)
		}
		candidates = append(candidates, models.Candidate{
			Street:      streetLine(number, street),
			HouseNumber: number,
			Postcode:    postcode,
			City:        city,
			Lat:         g.coord(),
			Lon:         g.coord(),
		})
	}
	return candidates, nil
}

func streetLine(number, street string) string {
	if street == "" {
		return number
	}
	return number + " " + street
}

// leadingDigit returns the first character as a digit, or -1.
func leadingDigit(s string) int {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return -1
	}
	return int(s[0] - '0')
}
