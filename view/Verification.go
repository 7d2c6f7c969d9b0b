package view

type RemainingRows struct {
	Table string `json:"table"`
	Count int    `json:"count"`
}

type DeletionVerificationReport struct {
	UserId           string          `json:"userId"`
	Tables           []RemainingRows `json:"tables"`
	DeletionComplete bool            `json:"deletionComplete"`
}
