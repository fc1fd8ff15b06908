package types

// Selector lets the user choose which cleanup targets to remove.
//
// preselected holds one flag per target; the returned slice contains the chosen targets in
// their original order.
type Selector interface {
	Select(targets []CleanupTarget, preselected []bool) ([]CleanupTarget, error)
}

// Confirmer asks the user to approve removal of the listed targets.
type Confirmer interface {
	Confirm(targets []CleanupTarget) (bool, error)
}
