package dto

type SubmitWasteRequest struct {
	// Reference is the scanned QR payload; UserID may be supplied directly
	// instead when the collector enters it by hand.
	Reference    string `json:"reference"`
	UserID       int64  `json:"user_id"`
	WasteType    string `json:"waste_type"`
	QualityScore int    `json:"quality_score"`
}

type ApproveCollectorRequest struct {
	RequestID int64 `json:"request_id"`
}
