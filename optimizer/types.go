package optimizer

// Request describes an incoming optimization payload.
type Request struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

// Suggestion is one normalized improvement entry. Every suggestion carries
// all three fields regardless of what shape the model produced.
type Suggestion struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Metrics is the canonical metrics block. RedundantRemoved stays a pointer
// so an absent value serializes as null rather than zero.
type Metrics struct {
	Language         string `json:"language"`
	LOCBefore        int    `json:"loc_before"`
	LOCAfter         int    `json:"loc_after"`
	Reduction        int    `json:"reduction"`
	RedundantRemoved *int   `json:"redundant_removed"`
	SecurityImproved bool   `json:"security_improved"`
}

// Response is the fully populated result returned to the client.
type Response struct {
	OptimizedCode string       `json:"optimized_code"`
	Suggestions   []Suggestion `json:"suggestions"`
	Metrics       Metrics      `json:"metrics"`
}
