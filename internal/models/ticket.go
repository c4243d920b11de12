package models

// TicketStatus is the workflow state of an incident ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "Open"
	TicketInProgress TicketStatus = "In Progress"
	TicketResolved   TicketStatus = "Resolved"
)

// Severity of a fault.
type Severity string

const (
	SeverityMinor Severity = "Minor"
	SeverityMajor Severity = "Major"
)

// AdminPanelLocation marks a ticket as an audit entry rather than a fault.
const AdminPanelLocation = "Admin Panel"

// Ticket represents an incident raised against an asset.
type Ticket struct {
	ID         int          `json:"id" bson:"id"`
	RowIndex   *int         `json:"rowIndex,omitempty" bson:"row_index,omitempty"`
	AssetTag   string       `json:"assetTag" bson:"asset_tag"`
	AssetID    int          `json:"assetId" bson:"asset_id"`
	Location   string       `json:"location" bson:"location"`
	Details    string       `json:"details" bson:"details"`
	Status     TicketStatus `json:"status" bson:"status"`
	Severity   Severity     `json:"severity" bson:"severity"`
	AssignedTo string       `json:"assignedTo" bson:"assigned_to"`
	Timestamp  string       `json:"timestamp" bson:"timestamp"`
}

// IsAudit reports whether the ticket is an Admin Panel audit entry.
func (t Ticket) IsAudit() bool {
	return t.Location == AdminPanelLocation
}

// IsOpen reports whether the ticket still counts against its assignee's load.
func (t Ticket) IsOpen() bool {
	return t.Status != TicketResolved
}

// NewTicket is the input for raising a fault.
type NewTicket struct {
	AssetID    int      `json:"assetId"`
	Details    string   `json:"details"`
	Severity   Severity `json:"severity,omitempty"`
	AssignedTo string   `json:"assignedTo,omitempty"`
	UseAI      bool     `json:"useAi,omitempty"`
}

// ResolutionClass describes how a fault was fixed.
type ResolutionClass string

const (
	ResolutionStandard   ResolutionClass = "Standard"
	ResolutionMechanical ResolutionClass = "Mechanical"
	ResolutionGasService ResolutionClass = "Gas Service"
)

// Severity maps a resolution class onto the Minor/Major split.
func (c ResolutionClass) Severity() Severity {
	if c == ResolutionStandard {
		return SeverityMinor
	}
	return SeverityMajor
}

// IsValid checks if the class is one of the known classes
func (c ResolutionClass) IsValid() bool {
	switch c {
	case ResolutionStandard, ResolutionMechanical, ResolutionGasService:
		return true
	default:
		return false
	}
}

// Resolution is the confirmed outcome of the resolve wizard.
type Resolution struct {
	TechnicianName string          `json:"technicianName"`
	Class          ResolutionClass `json:"class"`
	Details        string          `json:"details"`
	Gas            string          `json:"gas,omitempty"`
	Amount         float64         `json:"amount,omitempty"` // kg
}

// Demerit is a penalty recorded against a technician through the Admin Panel.
type Demerit struct {
	TicketID   int    `json:"ticketId" bson:"ticket_id"`
	RowIndex   *int   `json:"rowIndex,omitempty" bson:"row_index,omitempty"`
	Technician string `json:"technician" bson:"technician"`
	Points     int    `json:"points" bson:"points"`
	Reason     string `json:"reason" bson:"reason"`
	Timestamp  string `json:"timestamp" bson:"timestamp"`
	Closed     bool   `json:"closed" bson:"closed"`
}
