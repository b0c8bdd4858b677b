package ledger

import "errors"

// ErrInvalidRecord is returned when a record fails validation before
// append. The ledger never accepts partially formed entries.
var ErrInvalidRecord = errors.New("invalid swap record")
