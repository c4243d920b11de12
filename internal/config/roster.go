package config

import (
	"fmt"
	"os"

	"github.com/ukydev/fm-control/internal/models"
	"gopkg.in/yaml.v3"
)

// RosterEntry is a technician and the zone they are statically assigned to.
type RosterEntry struct {
	Name string      `yaml:"name"`
	Zone models.Zone `yaml:"zone"`
}

// Roster is the static field-force and stock setup of a site.
type Roster struct {
	Technicians []RosterEntry          `yaml:"technicians"`
	ZoneLabels  map[models.Zone]string `yaml:"zone_labels"`
	Gas         []models.InventoryItem `yaml:"gas"`
	Tools       []models.Tool          `yaml:"tools"`
}

// DefaultRoster returns the built-in site setup.
func DefaultRoster() Roster {
	return Roster{
		Technicians: []RosterEntry{
			{Name: "Bilal", Zone: models.ZoneA},
			{Name: "Asad", Zone: models.ZoneB},
			{Name: "Taimoor", Zone: models.ZoneC},
			{Name: "Saboor", Zone: models.ZoneD},
		},
		ZoneLabels: map[models.Zone]string{
			models.ZoneA: "Ground & Basement",
			models.ZoneB: "First Floor",
			models.ZoneC: "Second Floor",
			models.ZoneD: "Third Floor & Roof",
		},
		Gas: []models.InventoryItem{
			{Name: "R22", Kg: 45, Type: models.GasAC},
			{Name: "R410A", Kg: 38, Type: models.GasAC},
			{Name: "R32", Kg: 50, Type: models.GasAC},
			{Name: "R134a", Kg: 22, Type: models.GasFridge},
			{Name: "R600a", Kg: 12, Type: models.GasFridge},
		},
		Tools: []models.Tool{
			{Name: "Adjustable Wrench", Qty: 4},
			{Name: "Pliers Set", Qty: 2},
			{Name: "Screwdriver Set (+/-)", Qty: 2},
			{Name: "Ampere Meter", Qty: 2},
			{Name: "High Pressure Gauge", Qty: 2},
			{Name: "Charging Line", Qty: 6},
			{Name: "Flaring Tool", Qty: 2},
			{Name: "Allen Key Set", Qty: 2},
			{Name: "Swaging Tool", Qty: 1},
			{Name: "File", Qty: 2},
			{Name: "Tube Bender", Qty: 1},
			{Name: "Tool Bag", Qty: 2},
		},
	}
}

// LoadRoster reads a roster YAML file. Sections missing from the file keep
// their defaults; an empty path returns DefaultRoster.
func LoadRoster(path string) (Roster, error) {
	roster := DefaultRoster()
	if path == "" {
		return roster, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Roster{}, fmt.Errorf("read roster: %w", err)
	}

	var file Roster
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Roster{}, fmt.Errorf("parse roster: %w", err)
	}

	if len(file.Technicians) > 0 {
		roster.Technicians = file.Technicians
	}
	if len(file.ZoneLabels) > 0 {
		roster.ZoneLabels = file.ZoneLabels
	}
	if len(file.Gas) > 0 {
		roster.Gas = file.Gas
	}
	if len(file.Tools) > 0 {
		roster.Tools = file.Tools
	}

	if err := roster.Validate(); err != nil {
		return Roster{}, err
	}
	return roster, nil
}

// Validate checks names are unique and zones are A-D.
func (r Roster) Validate() error {
	seen := make(map[string]bool, len(r.Technicians))
	for _, t := range r.Technicians {
		if t.Name == "" {
			return fmt.Errorf("roster: technician without a name")
		}
		if seen[t.Name] {
			return fmt.Errorf("roster: duplicate technician %q", t.Name)
		}
		seen[t.Name] = true
		if !models.IsValidZone(t.Zone) {
			return fmt.Errorf("roster: technician %q has invalid zone %q", t.Name, t.Zone)
		}
	}
	for _, g := range r.Gas {
		if g.Kg < 0 {
			return fmt.Errorf("roster: gas %q has negative stock", g.Name)
		}
	}
	return nil
}
