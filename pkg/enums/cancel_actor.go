package enums

import "fmt"

// CancelActor identifies who is requesting a sub-order cancellation. The two
// actors are allowed different source states.
type CancelActor string

const (
	CancelActorCustomer CancelActor = "customer"
	CancelActorShipper  CancelActor = "shipper"
)

var validCancelActors = []CancelActor{
	CancelActorCustomer,
	CancelActorShipper,
}

// String implements fmt.Stringer.
func (c CancelActor) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CancelActor.
func (c CancelActor) IsValid() bool {
	for _, candidate := range validCancelActors {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCancelActor converts raw input into a CancelActor.
func ParseCancelActor(value string) (CancelActor, error) {
	for _, candidate := range validCancelActors {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cancel actor %q", value)
}
