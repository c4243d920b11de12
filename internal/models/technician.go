package models

// BaseScore is the starting score of every technician.
const BaseScore = 100

// MeritWeight is the number of score points a resolved fault is worth.
const MeritWeight = 5

// TakeoverBonus is awarded when a technician covers another zone.
const TakeoverBonus = 10

// Technician represents a member of the field force.
type Technician struct {
	Name        string `json:"name" bson:"name"`
	Merit       int    `json:"merit" bson:"-"`
	Demerit     int    `json:"demerit" bson:"-"`
	IsPresent   bool   `json:"isPresent" bson:"is_present"`
	Zone        Zone   `json:"zone" bson:"zone"`
	BonusPoints int    `json:"bonusPoints" bson:"bonus_points"`
}

// Score returns 100 + 5*merit + bonus - demerit. It is not clamped.
func (t Technician) Score() int {
	return BaseScore + t.Merit*MeritWeight + t.BonusPoints - t.Demerit
}

// RankedTechnician is a technician with its computed score, as shown on the leaderboard.
type RankedTechnician struct {
	Technician
	Score int `json:"score"`
	Rank  int `json:"rank"`
}
