package submission

// Step identifies one stage of the listing submission workflow.
type Step string

const (
	StepVehicle        Step = "vehicle"
	StepCondition      Step = "condition"
	StepAdditional     Step = "additional"
	StepListingDetails Step = "listing-details"
	StepSellerInfo     Step = "seller-info"
	StepImages         Step = "images"
)

// stepDefinition declares which draft fields a step owns and which of them
// gate the Next transition. Field names match the draft record's json tags.
type stepDefinition struct {
	ID        Step
	Fields    []string
	Validated []string
}

var stepSequence = []stepDefinition{
	{
		ID:        StepVehicle,
		Fields:    []string{"make", "model", "year", "vin"},
		Validated: []string{"make", "model", "year", "vin"},
	},
	{
		ID: StepCondition,
		Fields: []string{
			"condition", "mileage", "has_tuning", "is_first_owner",
			"is_accident_free", "is_damaged", "is_serviced_at_dealer",
		},
		Validated: []string{"condition", "mileage"},
	},
	{
		ID: StepAdditional,
		Fields: []string{
			"transmission", "fuel_type", "is_registered", "registration_number",
			"first_registration_date", "show_registration_info", "is_imported", "import_country",
		},
		Validated: []string{"transmission", "fuel_type"},
	},
	{
		ID:        StepListingDetails,
		Fields:    []string{"price", "description", "location"},
		Validated: []string{"price", "description", "location"},
	},
	{
		ID:        StepSellerInfo,
		Fields:    []string{"seller_name", "seller_phone"},
		Validated: []string{"seller_name", "seller_phone"},
	},
	{
		ID:        StepImages,
		Fields:    []string{"images"},
		Validated: []string{"images"},
	},
}

// FirstStep is the workflow entry point.
func FirstStep() Step {
	return stepSequence[0].ID
}

// LastStep is the only step a submit may happen from.
func LastStep() Step {
	return stepSequence[len(stepSequence)-1].ID
}

// Steps returns the ordered step identifiers.
func Steps() []Step {
	out := make([]Step, 0, len(stepSequence))
	for _, def := range stepSequence {
		out = append(out, def.ID)
	}
	return out
}

// IsValid reports whether the value names a known step.
func (s Step) IsValid() bool {
	return stepIndex(s) >= 0
}

func (s Step) String() string {
	return string(s)
}

func stepIndex(step Step) int {
	for i, def := range stepSequence {
		if def.ID == step {
			return i
		}
	}
	return -1
}

func stepByID(step Step) (stepDefinition, bool) {
	idx := stepIndex(step)
	if idx < 0 {
		return stepDefinition{}, false
	}
	return stepSequence[idx], true
}
