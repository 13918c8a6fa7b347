// Package trackmeta provides display metadata for tracks and cars.
package trackmeta

import (
	"sort"

	"github.com/verte-zerg/lapview/internal/config"
)

// Track describes how a track is shown on the map.
type Track struct {
	ID   string
	Name string
	// Rotation aligns recorded coordinates with the track image, in degrees.
	Rotation *float64
	Image    string
}

// RotationDegrees returns the rotation or 0 when none is known.
func (t Track) RotationDegrees() float64 {
	if t.Rotation == nil {
		return 0
	}
	return *t.Rotation
}

// Car is a car model known by its simulator id.
type Car struct {
	ID    string
	Name  string
	Class string
}

// Provider resolves track metadata by id.
type Provider interface {
	Track(id string) (Track, bool)
}

// Catalog is the built-in track and car table plus config overrides.
type Catalog struct {
	tracks map[string]Track
	cars   map[string]Car
}

func deg(v float64) *float64 { return &v }

var builtinTracks = []Track{
	{ID: "barcelona", Name: "Barcelona", Image: "barcelona-n.svg"},
	{ID: "mount_panorama", Name: "Bathurst", Image: "bathurst.svg"},
	{ID: "brands_hatch", Name: "Brands Hatch", Image: "brands-hatch-n.svg"},
	{ID: "cota", Name: "Circuit of the Americas", Image: "cota.svg"},
	{ID: "donington", Name: "Donington Park", Image: "donington.svg", Rotation: deg(-50)},
	{ID: "Hungaroring", Name: "Hungaroring", Image: "hungaroring-n.svg", Rotation: deg(0)},
	{ID: "Imola", Name: "Imola", Image: "imola.svg"},
	{ID: "indianapolis", Name: "Indianapolis", Image: "indi.svg"},
	{ID: "kyalami", Name: "Kyalami", Image: "kyalami.svg"},
	{ID: "laguna_seca", Name: "Laguna Seca", Image: "laguna.svg"},
	{ID: "misano", Name: "Misano", Image: "misano-n.svg"},
	{ID: "monza", Name: "Monza", Image: "monza-n.svg", Rotation: deg(-95)},
	{ID: "nurburgring_24h", Name: "Nordschleife", Image: "NBR24h-ok.svg", Rotation: deg(-90)},
	{ID: "nurburgring", Name: "Nürburgring GP", Image: "nurburgring-n.svg"},
	{ID: "oulton_park", Name: "Oulton Park", Image: "oulton.svg", Rotation: deg(0)},
	{ID: "paul_ricard", Name: "Paul Ricard", Image: "paul-ricard-n.svg"},
	{ID: "red_bull_ring", Name: "Red Bull Ring", Image: "austria-n.svg"},
	{ID: "Silverstone", Name: "Silverstone", Image: "silverstone-n.svg"},
	{ID: "snetterton", Name: "Snetterton", Image: "snetterton.svg"},
	{ID: "Spa", Name: "Spa Francorchamps", Image: "spa-n.svg", Rotation: deg(-90)},
	{ID: "Suzuka", Name: "Suzuka", Image: "suzuka.svg", Rotation: deg(0)},
	{ID: "valencia", Name: "Valencia", Image: "valencia.svg"},
	{ID: "watkins_glen", Name: "Watkins Glen", Image: "watkins.svg"},
	{ID: "zandvoort", Name: "Zandvoort", Image: "zandvoort.svg"},
	{ID: "zolder", Name: "Zolder", Image: "zolder-n.svg"},
}

var builtinCars = []Car{
	{ID: "amr_v8_vantage_gt3", Name: "Aston Martin V8 Vantage GT3 2019", Class: "GT3"},
	{ID: "amr_v12_vantage_gt3", Name: "Aston Martin Vantage V12 GT3 2013", Class: "GT3"},
	{ID: "audi_r8_lms_evo", Name: "Audi R8 LMS Evo 2019", Class: "GT3"},
	{ID: "bentley_continental_gt3_2018", Name: "Bentley Continental GT3 2018", Class: "GT3"},
	{ID: "bmw_m4_gt3", Name: "BMW M4 GT3 2022", Class: "GT3"},
	{ID: "ferrari_296_gt3", Name: "Ferrari 296 GT3 2023", Class: "GT3"},
	{ID: "ferrari_488_gt3_evo", Name: "Ferrari 488 GT3 Evo 2020", Class: "GT3"},
	{ID: "lamborghini_huracan_gt3_evo", Name: "Lamborghini Huracan GT3 Evo 2019", Class: "GT3"},
	{ID: "mclaren_720s_gt3", Name: "McLaren 720S GT3 2019", Class: "GT3"},
	{ID: "mercedes_amg_gt3_evo", Name: "Mercedes-AMG GT3 Evo 2020", Class: "GT3"},
	{ID: "porsche_991ii_gt3_r", Name: "Porsche 911 II GT3 R 2019", Class: "GT3"},
	{ID: "lexus_rc_f_gt3", Name: "Lexus RC F GT3 2016", Class: "GT3"},
	{ID: "amr_v8_vantage_gt4", Name: "Aston Martin Vantage AMR GT4 2018", Class: "GT4"},
	{ID: "alpine_a110_gt4", Name: "Alpine A110 GT4 2018", Class: "GT4"},
	{ID: "bmw_m4_gt4", Name: "BMW M4 GT4 2018", Class: "GT4"},
	{ID: "mclaren_570s_gt4", Name: "McLaren 570S GT4 2018", Class: "GT4"},
	{ID: "porsche_718_cayman_gt4_mr", Name: "Porsche 718 Cayman GT4 MR 2019", Class: "GT4"},
	{ID: "porsche_991ii_gt3_cup", Name: "Porsche 911 II GT3 Cup 2017", Class: "Cup"},
	{ID: "ferrari_488_challenge_evo", Name: "Ferrari 488 Challenge Evo 2020", Class: "Cup"},
	{ID: "lamborghini_huracan_st_evo2", Name: "Lamborghini Huracan ST Evo2 2021", Class: "Cup"},
}

// NewCatalog builds the built-in catalog and applies track overrides.
// An override replaces only the fields it sets; unknown ids add a track.
func NewCatalog(overrides []config.TrackConfig) *Catalog {
	c := &Catalog{
		tracks: make(map[string]Track, len(builtinTracks)+len(overrides)),
		cars:   make(map[string]Car, len(builtinCars)),
	}
	for _, t := range builtinTracks {
		c.tracks[t.ID] = t
	}
	for _, car := range builtinCars {
		c.cars[car.ID] = car
	}
	for _, o := range overrides {
		if o.ID == "" {
			continue
		}
		t, ok := c.tracks[o.ID]
		if !ok {
			t = Track{ID: o.ID, Name: o.ID}
		}
		if o.Name != "" {
			t.Name = o.Name
		}
		if o.Rotation != nil {
			t.Rotation = deg(*o.Rotation)
		}
		if o.Image != "" {
			t.Image = o.Image
		}
		c.tracks[o.ID] = t
	}
	return c
}

// Track returns metadata for a track id.
func (c *Catalog) Track(id string) (Track, bool) {
	t, ok := c.tracks[id]
	return t, ok
}

// TrackName returns the display name, falling back to the id.
func (c *Catalog) TrackName(id string) string {
	if t, ok := c.tracks[id]; ok {
		return t.Name
	}
	return id
}

// Tracks returns all tracks sorted by name.
func (c *Catalog) Tracks() []Track {
	out := make([]Track, 0, len(c.tracks))
	for _, t := range c.tracks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Car returns metadata for a car id.
func (c *Catalog) Car(id string) (Car, bool) {
	car, ok := c.cars[id]
	return car, ok
}

// CarName returns the display name, falling back to the id.
func (c *Catalog) CarName(id string) string {
	if car, ok := c.cars[id]; ok {
		return car.Name
	}
	return id
}

// Rotation resolves the map rotation for a track; unknown tracks and
// tracks without a rotation use 0.
func Rotation(p Provider, trackID string) float64 {
	if p == nil {
		return 0
	}
	t, ok := p.Track(trackID)
	if !ok {
		return 0
	}
	return t.RotationDegrees()
}
