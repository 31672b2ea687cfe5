package models

// Strategy codes understood by the auto-assign endpoint. The bin-packing
// itself lives on the backend; these are opaque labels here.
const (
	StrategySimulation      = "SIMULATION"
	StrategyStandard        = "STANDARD"
	StrategySpaceOptimizer  = "SPACE_OPTIMIZER"
	StrategyChildrenFirst   = "CHILDREN_FIRST"
	StrategyPerfectMatch    = "PERFECT_MATCH"
	StrategySmallestFirst   = "SMALLEST_FIRST"
	StrategyAffinityCluster = "AFFINITY_CLUSTER"
)

// AutoAssignRequest is the body of the auto-assign call
type AutoAssignRequest struct {
	ResetPrevious bool   `json:"reset_previous"`
	Strategy      string `json:"strategy"`
}

// StrategyResult is the outcome of one strategy, simulated or applied
type StrategyResult struct {
	StrategyCode     string `json:"strategy_code"`
	StrategyName     string `json:"strategy_name"`
	AssignedGuests   int    `json:"assigned_guests"`
	UnassignedGuests int    `json:"unassigned_guests"`
	WastedBeds       int    `json:"wasted_beds"`
}

// AutoAssignResponse carries Results in simulation mode and Result in apply mode
type AutoAssignResponse struct {
	Results []StrategyResult `json:"results,omitempty"`
	Result  *StrategyResult  `json:"result,omitempty"`
}
