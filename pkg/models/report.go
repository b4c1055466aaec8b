package models

// ReportStatus is the moderation state of a report.
type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportResolved ReportStatus = "resolved"
)

// Report is a user-submitted moderation report.
type Report struct {
	ID       ID           `json:"id"`
	Type     string       `json:"type"`
	Reason   string       `json:"reason"`
	Reporter string       `json:"reporter"`
	Target   string       `json:"target"`
	Status   ReportStatus `json:"status"`
}
