package control

import (
	"errors"
	"fmt"
)

var (
	ErrAssetNotFound     = errors.New("asset not found")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrTicketResolved    = errors.New("ticket already resolved")
	ErrMissingRowIndex   = errors.New("ticket has no sheet row yet")
	ErrInvalidTicket     = errors.New("invalid ticket")
	ErrInvalidResolution = errors.New("invalid resolution")
	ErrInvalidCategory   = errors.New("invalid checklist category")
	ErrUnknownTechnician = errors.New("unknown technician")
	ErrNotPresent        = errors.New("technician is not present")
	ErrInvalidZone       = errors.New("invalid zone")
	ErrInvalidDemerit    = errors.New("invalid demerit")
	ErrUnknownGas        = errors.New("unknown gas")
	ErrInvalidAmount     = errors.New("invalid amount")
)

// SyncError reports a failed refresh. The previous state is kept.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string { return fmt.Sprintf("sync failed: %v", e.Err) }

func (e *SyncError) Unwrap() error { return e.Err }

// RemoteError reports a failed write to the remote store.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *RemoteError) Unwrap() error { return e.Err }
