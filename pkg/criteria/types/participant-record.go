package types

// ParticipantRecord is a caller supplied data record to check against the
// study criteria. It is never persisted by this service.
// Boolean fields use pointers so that "not provided" can be told apart from
// a provided false value; empty string means not provided for dob and gender.
type ParticipantRecord struct {
	ParticipantID string `json:"participantId,omitempty"`
	Dob           string `json:"dob,omitempty"`
	Gender        string `json:"gender,omitempty"`
	HasCancer     *bool  `json:"has_cancer,omitempty"`
	HadCancer     *bool  `json:"had_cancer,omitempty"`
	IsSmoker      *bool  `json:"is_smoker,omitempty"`
	WasSmoker     *bool  `json:"was_smoker,omitempty"`
	IsPregnant    *bool  `json:"is_pregnant,omitempty"`
}
