package domain

import (
	"errors"
	"fmt"
)

// ConnectivityError reports that an upstream service could not be reached
// at all. A poll cycle stops at the first one and retries on the next tick.
type ConnectivityError struct {
	Service string
	Err     error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("cannot reach %s: %v", e.Service, e.Err)
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// IsConnectivity reports whether err has a ConnectivityError in its chain.
func IsConnectivity(err error) bool {
	var ce *ConnectivityError
	return errors.As(err, &ce)
}
