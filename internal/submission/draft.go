package submission

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/automarkt/automarkt-backend/pkg/errors"
)

// draftSchemaVersion guards restores: a draft stored by an incompatible
// build is discarded instead of crashing the workflow.
const draftSchemaVersion = 1

const registrationDateLayout = "2006-01-02"

var maxListingPrice = decimal.NewFromInt(10_000_000)

// DraftRecord is the in-progress listing a seller fills in step by step.
// Price stays a string until submit so partial form input survives restores.
type DraftRecord struct {
	Make  string `json:"make" validate:"required"`
	Model string `json:"model" validate:"required"`
	Year  int    `json:"year" validate:"required,min=1900,listing_year"`
	VIN   string `json:"vin" validate:"omitempty,len=17"`

	Condition          string `json:"condition" validate:"required,oneof=new used parts"`
	Mileage            int    `json:"mileage" validate:"required,gt=0,lt=1000000"`
	HasTuning          bool   `json:"has_tuning"`
	IsFirstOwner       bool   `json:"is_first_owner"`
	IsAccidentFree     bool   `json:"is_accident_free"`
	IsDamaged          bool   `json:"is_damaged"`
	IsServicedAtDealer bool   `json:"is_serviced_at_dealer"`

	Transmission          string `json:"transmission" validate:"required,oneof=manual automatic"`
	FuelType              string `json:"fuel_type" validate:"required,oneof=gasoline diesel electric hybrid lpg other"`
	IsRegistered          bool   `json:"is_registered"`
	RegistrationNumber    string `json:"registration_number"`
	FirstRegistrationDate string `json:"first_registration_date" validate:"omitempty,datetime=2006-01-02"`
	ShowRegistrationInfo  bool   `json:"show_registration_info"`
	IsImported            bool   `json:"is_imported"`
	ImportCountry         string `json:"import_country"`

	Price       string `json:"price" validate:"required,listing_price"`
	Description string `json:"description" validate:"required,min=10,max=1000"`
	Location    string `json:"location" validate:"required"`

	SellerName  string `json:"seller_name" validate:"required"`
	SellerPhone string `json:"seller_phone" validate:"required"`

	Images []string `json:"images" validate:"required,min=1,dive,required"`
}

// Draft bundles the record with the workflow position so a seller can
// resume exactly where they left off.
type Draft struct {
	Version   int         `json:"version"`
	Record    DraftRecord `json:"record"`
	Step      Step        `json:"step"`
	Completed []Step      `json:"completed"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewDraft returns an empty draft positioned at the first step.
func NewDraft() *Draft {
	return &Draft{
		Version:   draftSchemaVersion,
		Step:      FirstStep(),
		Completed: []Step{},
		UpdatedAt: time.Now().UTC(),
	}
}

// IsCompleted reports whether the step has passed its Next validation.
func (d *Draft) IsCompleted(step Step) bool {
	for _, done := range d.Completed {
		if done == step {
			return true
		}
	}
	return false
}

func (d *Draft) markCompleted(step Step) {
	if d.IsCompleted(step) {
		return
	}
	d.Completed = append(d.Completed, step)
}

// lastCompletedIndex returns the highest sequence index among completed
// steps, or -1 when nothing is complete yet.
func (d *Draft) lastCompletedIndex() int {
	last := -1
	for _, done := range d.Completed {
		if idx := stepIndex(done); idx > last {
			last = idx
		}
	}
	return last
}

// CanNavigateTo implements the step-gating rule: the current step, any
// completed step, and the step right after the furthest completed one are
// reachable. Everything else is rejected.
func (d *Draft) CanNavigateTo(target Step) bool {
	idx := stepIndex(target)
	if idx < 0 {
		return false
	}
	if target == d.Step || d.IsCompleted(target) {
		return true
	}
	return idx == d.lastCompletedIndex()+1
}

var draftValidator = newDraftValidator()

func newDraftValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("listing_year", func(fl validator.FieldLevel) bool {
		return int(fl.Field().Int()) <= time.Now().Year()+1
	})
	_ = v.RegisterValidation("listing_price", func(fl validator.FieldLevel) bool {
		price, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		if err != nil {
			return false
		}
		return price.IsPositive() && price.LessThan(maxListingPrice)
	})
	return v
}

// structFieldsByJSON maps the wire names the step definitions use onto the
// struct fields StructPartial expects.
var structFieldsByJSON = buildFieldIndex()

func buildFieldIndex() map[string]string {
	t := reflect.TypeOf(DraftRecord{})
	out := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			tag = f.Name
		}
		out[tag] = f.Name
	}
	return out
}

// validateStep checks only the fields the given step declares. A nil return
// means the step may be marked complete.
func validateStep(record DraftRecord, step Step) *pkgerrors.Error {
	def, ok := stepByID(step)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown step")
	}
	fields := make([]string, 0, len(def.Validated))
	for _, jsonName := range def.Validated {
		if structField, ok := structFieldsByJSON[jsonName]; ok {
			fields = append(fields, structField)
		}
	}
	if err := draftValidator.StructPartial(record, fields...); err != nil {
		return formatFieldErrors(err)
	}
	return nil
}

// validateForSubmit runs the full schema plus the cross-step rules that
// only make sense once every field is present.
func validateForSubmit(record DraftRecord) *pkgerrors.Error {
	if err := draftValidator.Struct(record); err != nil {
		return formatFieldErrors(err)
	}
	return crossFieldRules(record)
}

// validateForSubmitWithStaged is validateForSubmit for submits that carry
// unsaved uploads: staged images satisfy the minimum-image requirement.
func validateForSubmitWithStaged(record DraftRecord, stagedCount int) *pkgerrors.Error {
	if stagedCount == 0 {
		return validateForSubmit(record)
	}
	if err := draftValidator.StructExcept(record, "Images"); err != nil {
		return formatFieldErrors(err)
	}
	return crossFieldRules(record)
}

func crossFieldRules(record DraftRecord) *pkgerrors.Error {
	details := map[string]string{}
	if record.IsRegistered {
		if strings.TrimSpace(record.RegistrationNumber) == "" {
			details["registration_number"] = "is required for registered vehicles"
		}
		if strings.TrimSpace(record.FirstRegistrationDate) == "" {
			details["first_registration_date"] = "is required for registered vehicles"
		} else if parsed, err := time.Parse(registrationDateLayout, record.FirstRegistrationDate); err == nil {
			if parsed.Year() < record.Year {
				details["first_registration_date"] = "cannot precede the listing year"
			}
		}
	}
	if record.IsImported && strings.TrimSpace(record.ImportCountry) == "" {
		details["import_country"] = "is required for imported vehicles"
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return nil
}

func formatFieldErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = fieldMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "must be one of " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "listing_year":
		return "cannot be in the future"
	case "listing_price":
		return "must be a positive amount below 10000000"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	}
	return "is invalid"
}
