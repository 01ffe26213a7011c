package strategy

// Strategy is the partition generation method.
type Strategy string

// Generation strategies.
const (
	// Random shuffles rows and deals them round-robin.
	Random      Strategy = "random"
	Categorical Strategy = "categorical"
	// RandomCategorical perturbs a categorical partition with random swaps.
	RandomCategorical Strategy = "random_categorical"
)

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == Random || s == Categorical || s == RandomCategorical
}

// UsesCategories reports whether the strategy requires at least one category.
func (s Strategy) UsesCategories() bool {
	return s == Categorical || s == RandomCategorical
}

// Label returns the strategy name for metric labels; unsupported values collapse to "unknown".
func (s Strategy) Label() string {
	if !s.IsValid() {
		return "unknown"
	}
	return string(s)
}
