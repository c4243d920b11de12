package models

// GasType is the equipment family a refrigerant is used for.
type GasType string

const (
	GasAC     GasType = "AC"
	GasFridge GasType = "Fridge"
)

// InventoryItem is a refrigerant gas stock line.
type InventoryItem struct {
	Name string  `json:"name" bson:"name" yaml:"name"`
	Kg   float64 `json:"kg" bson:"kg" yaml:"kg"`
	Type GasType `json:"type" bson:"type" yaml:"type"`
}

// Tool is a line of the shared tool catalogue.
type Tool struct {
	Name string `json:"name" yaml:"name"`
	Qty  int    `json:"qty" yaml:"qty"`
}
