// Package api holds the JSON wire types of the HTTP API and the formatters
// that turn engine results into them.
package api

// ErrorKind is the stable machine-readable error class of an error response.
type ErrorKind string

// Error kinds.
const (
	KindMalformedInput     ErrorKind = "MalformedInputError"
	KindEncoding           ErrorKind = "EncodingError"
	KindUnknownColumn      ErrorKind = "UnknownColumnError"
	KindInvalidWeight      ErrorKind = "InvalidWeightError"
	KindMissingCategory    ErrorKind = "MissingCategoryError"
	KindDuplicateCategory  ErrorKind = "DuplicateCategoryError"
	KindInvalidTeamCount   ErrorKind = "InvalidTeamCountError"
	KindInvalidTrialBudget ErrorKind = "InvalidTrialBudgetError"
	KindUnknownStrategy    ErrorKind = "UnknownStrategyError"
	KindTableNotFound      ErrorKind = "TableNotFoundError"
	KindValidation         ErrorKind = "ValidationError"
	KindPayloadTooLarge    ErrorKind = "PayloadTooLargeError"
	KindUnauthorized       ErrorKind = "UnauthorizedError"
	KindCanceled           ErrorKind = "CanceledError"
	KindTimeout            ErrorKind = "TimeoutError"
	KindInternal           ErrorKind = "InternalError"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// CategoryValue weights one value of a category column, addressed by raw
// value or by index into the column's sorted distinct values.
type CategoryValue struct {
	Value      *string `json:"value,omitempty" validate:"required_without=ValueIndex"`
	ValueIndex *int    `json:"valueIndex,omitempty"`
	Weight     float64 `json:"weight"`
	Label      string  `json:"label,omitempty"`
}

// Category selects a column to balance teams on.
type Category struct {
	// Index is the table column; 0 is the member label column and is rejected.
	Index *int `json:"index" validate:"required"`
	// Weight is the category priority; omitted means 1.
	Weight *float64        `json:"weight,omitempty"`
	Name   string          `json:"name,omitempty" validate:"max=200"`
	Values []CategoryValue `json:"values,omitempty" validate:"omitempty,dive"`
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	TableID    string     `json:"tableId" validate:"required,uuid"`
	NumTeams   int        `json:"numTeams"`
	Strategy   string     `json:"strategy" validate:"required"`
	Categories []Category `json:"categories,omitempty" validate:"omitempty,dive"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	TableID             string     `json:"tableId" validate:"required,uuid"`
	NumTeams            int        `json:"numTeams"`
	Strategy            string     `json:"strategy" validate:"required"`
	Categories          []Category `json:"categories" validate:"omitempty,dive"`
	TargetCategoryIndex int        `json:"targetCategoryIndex"`
	TrialBudget         int        `json:"trialBudget"`
}

// TableResponse describes an uploaded table.
type TableResponse struct {
	TableID  string   `json:"tableId"`
	Headers  []string `json:"headers"`
	RowCount int      `json:"rowCount"`
}

// GenerateResponse is the body of a successful POST /generate.
type GenerateResponse struct {
	// Teams holds the row indices of every team in team order.
	Teams [][]int `json:"teams"`
	// Members holds the first-column value of every row, parallel to Teams.
	Members [][]string `json:"members"`
}

// SearchResponse is the body of a successful POST /search.
type SearchResponse struct {
	Teams     [][]int    `json:"teams"`
	Members   [][]string `json:"members"`
	Score     float64    `json:"score"`
	Trials    int        `json:"trials"`
	BestTrial int        `json:"bestTrial"`
	// Distribution holds per team the weighted count of every value of the target category.
	Distribution []map[string]float64 `json:"distribution"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
