package domain

import (
	"fmt"
	"strconv"
)

// TenantID identifies the marketplace instance that owns orders, credentials and logs.
type TenantID int64

// ParseTenantID parses a positive tenant identifier.
func ParseTenantID(s string) (TenantID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewError(KindInvalidInput, "invalid tenant id %q", s)
	}
	return TenantID(id), nil
}

func (t TenantID) String() string {
	return fmt.Sprintf("%d", int64(t))
}
