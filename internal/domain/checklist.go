package domain

// ChecklistStep represents one month-close gate. Steps are seeded per close
// period and toggled as the work is done; the caller reseeds for the next
// period.
type ChecklistStep struct {
	ID          string
	Title       string
	Description string
	Done        bool
}
