package teammaker

import "github.com/kailas-cloud/teammaker/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrMalformedInput     = domain.ErrMalformedInput
	ErrEncoding           = domain.ErrEncoding
	ErrUnknownColumn      = domain.ErrUnknownColumn
	ErrInvalidWeight      = domain.ErrInvalidWeight
	ErrMissingCategory    = domain.ErrMissingCategory
	ErrDuplicateCategory  = domain.ErrDuplicateCategory
	ErrInvalidTeamCount   = domain.ErrInvalidTeamCount
	ErrInvalidTrialBudget = domain.ErrInvalidTrialBudget
	ErrUnknownStrategy    = domain.ErrUnknownStrategy
)
