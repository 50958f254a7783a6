package consts

const (
	PivotEpsilon      = 1e-9 // Relative pivot threshold for dense elimination
	VoltageTolerance  = 1e-9 // Relative tolerance for forced voltage loops
	ResidualTolerance = 1e-8 // Relative residual accepted from the sparse backend
	CurrentPrecision  = 10   // Decimals rendered per current value
	CurrentUnit       = "A"  // Suffix of every result line
	DetPrecision      = 6    // Decimals rendered by the det command
)
