package stats

// Stats are the dashboard counters of one user. Archived forms and databases
// are not counted, nor are submissions to archived forms.
type Stats struct {
	FormsCreated     int64 `json:"forms_created"`
	FormsSubmitted   int64 `json:"forms_submitted"`
	DatabasesCreated int64 `json:"databases_created"`
}
