package digi

import "fmt"

// ErrInvalidConfig represents a configuration value the engine refuses to
// run with. Detected at construction time, always fatal.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid configuration %q: %s", e.Field, e.Reason)
}

// ErrUnknownChannel represents a cell identifier that cannot be resolved
// through the geometry handle. Per-hit, non-fatal.
type ErrUnknownChannel struct {
	CellID uint64
}

func (e *ErrUnknownChannel) Error() string {
	return fmt.Sprintf("cell id 0x%016x outside the readout topology", e.CellID)
}

// ErrCreateGroup represents an error when creating an HDF5 group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

// ErrCreateTable represents an error when creating an HDF5 table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}
