package models

// AssetStatus is the lifecycle state of an HVAC asset as recorded in the remote sheet.
type AssetStatus string

const (
	AssetActive      AssetStatus = "Active"
	AssetMaintenance AssetStatus = "Maintenance"
	AssetSpare       AssetStatus = "Spare"
	AssetDisposed    AssetStatus = "Disposed"
	AssetObsolete    AssetStatus = "Obsolete"
)

// AssetStatuses lists every known status in display order.
var AssetStatuses = []AssetStatus{AssetActive, AssetMaintenance, AssetSpare, AssetDisposed, AssetObsolete}

// Zone is one of the four static partitions of the facility.
type Zone string

const (
	ZoneA Zone = "A"
	ZoneB Zone = "B"
	ZoneC Zone = "C"
	ZoneD Zone = "D"
)

// Zones lists the zones in quartile order.
var Zones = []Zone{ZoneA, ZoneB, ZoneC, ZoneD}

// IsValidZone checks if a zone is one of A-D
func IsValidZone(z Zone) bool {
	switch z {
	case ZoneA, ZoneB, ZoneC, ZoneD:
		return true
	default:
		return false
	}
}

// ZoneForIndex returns the zone of the i-th asset in a list of n assets.
// Assets are split into quartiles by position; anything past the last
// quartile boundary lands in D.
func ZoneForIndex(i, n int) Zone {
	if n <= 0 {
		return ZoneA
	}
	idx := int(float64(i) / (float64(n) / 4))
	if idx > 3 {
		idx = 3
	}
	if idx < 0 {
		idx = 0
	}
	return Zones[idx]
}

// Asset represents an HVAC unit tracked in the remote sheet.
type Asset struct {
	ID       int         `json:"id" bson:"id"`
	Tag      string      `json:"tag" bson:"tag"`
	Brand    string      `json:"brand" bson:"brand"`
	Capacity string      `json:"capacity" bson:"capacity"`
	Room     string      `json:"room" bson:"room"`
	Location string      `json:"location" bson:"location"`
	Campus   string      `json:"campus" bson:"campus"`
	Floor    string      `json:"floor" bson:"floor"`
	Status   AssetStatus `json:"status" bson:"status"`
	Zone     Zone        `json:"zone" bson:"zone"`
}
