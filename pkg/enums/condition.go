package enums

import "fmt"

// Condition classifies the overall state a car is sold in.
type Condition string

const (
	ConditionNew   Condition = "new"
	ConditionUsed  Condition = "used"
	ConditionParts Condition = "parts"
)

var validConditions = []Condition{
	ConditionNew,
	ConditionUsed,
	ConditionParts,
}

// String implements fmt.Stringer.
func (c Condition) String() string {
	return string(c)
}

// IsValid reports whether the condition is recognized.
func (c Condition) IsValid() bool {
	for _, candidate := range validConditions {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCondition converts a raw string into a Condition.
func ParseCondition(value string) (Condition, error) {
	for _, candidate := range validConditions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid condition %q", value)
}
