package workflow

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jbirchohio/NestMapRepo-sub002/internal/models"
)

// Aggregate owns the booking form and its merge semantics. Patches from
// one step never clobber fields captured by another: nested objects are
// merged field by field, arrays are replaced wholesale.
type Aggregate struct {
	form     models.BookingForm
	validate *validator.Validate
}

// NewAggregate builds a form with conservative defaults.
func NewAggregate() *Aggregate {
	return &Aggregate{
		form: models.BookingForm{
			Trip: models.TripDetails{
				TripType:   models.TripRoundTrip,
				Cabin:      models.CabinEconomy,
				Passengers: 1,
			},
		},
		validate: newFormValidator(),
	}
}

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report field paths by json name so errors address the wire shape.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Patch deep-merges a partial update into the form.
func (a *Aggregate) Patch(p models.FormPatch) {
	if p.Trip != nil {
		mergeTrip(&a.form.Trip, *p.Trip)
	}
	if p.PrimaryTraveler != nil {
		mergeTraveler(&a.form.PrimaryTraveler, *p.PrimaryTraveler)
	}
	if p.AdditionalTravelers != nil {
		a.form.AdditionalTravelers = append([]models.Traveler(nil), (*p.AdditionalTravelers)...)
	}
	if p.Stay != nil {
		mergeStay(&a.form.Stay, *p.Stay)
	}
}

func mergeTrip(dst *models.TripDetails, p models.TripPatch) {
	setString(&dst.Origin, p.Origin)
	setString(&dst.Destination, p.Destination)
	setString(&dst.DepartureDate, p.DepartureDate)
	setString(&dst.ReturnDate, p.ReturnDate)
	setString(&dst.TripType, p.TripType)
	setString(&dst.Cabin, p.Cabin)
	setInt(&dst.Passengers, p.Passengers)
	setString(&dst.CostCenter, p.CostCenter)
	setString(&dst.BudgetCode, p.BudgetCode)
}

func mergeTraveler(dst *models.Traveler, p models.TravelerPatch) {
	setString(&dst.FirstName, p.FirstName)
	setString(&dst.LastName, p.LastName)
	setString(&dst.DateOfBirth, p.DateOfBirth)
	setString(&dst.Email, p.Email)
	setString(&dst.Phone, p.Phone)
}

func mergeStay(dst *models.StayDetails, p models.StayPatch) {
	setString(&dst.Destination, p.Destination)
	setString(&dst.CheckIn, p.CheckIn)
	setString(&dst.CheckOut, p.CheckOut)
	setString(&dst.CheckInTime, p.CheckInTime)
	setString(&dst.Address, p.Address)
	setString(&dst.SpecialRequests, p.SpecialRequests)
	setInt(&dst.Guests, p.Guests)
	setInt(&dst.Rooms, p.Rooms)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

// SetSelection records the current selection on the form.
func (a *Aggregate) SetSelection(sel models.Selection) {
	a.form.Selection = sel
}

// Form returns a copy of the accumulated record; slice fields are
// detached so callers cannot mutate the aggregate behind its back.
func (a *Aggregate) Form() models.BookingForm {
	out := a.form
	out.AdditionalTravelers = append([]models.Traveler(nil), a.form.AdditionalTravelers...)
	return out
}

// Restore loads a persisted form.
func (a *Aggregate) Restore(form models.BookingForm) {
	a.form = form
}

// Validate applies the full schema and returns nil or a field-path
// addressable ValidationError.
func (a *Aggregate) Validate() *ValidationError {
	fields := map[string]string{}

	if err := a.validate.Struct(a.form); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields[fieldPath(fe)] = fieldMessage(fe)
			}
		} else {
			fields["form"] = err.Error()
		}
	}

	a.crossFieldRules(fields)

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func (a *Aggregate) crossFieldRules(fields map[string]string) {
	trip := a.form.Trip
	if trip.Origin != "" && trip.Origin == trip.Destination {
		fields["trip.destination"] = "destination must differ from origin"
	}

	var dep time.Time
	if trip.DepartureDate != "" {
		var err error
		dep, err = time.Parse(models.DateLayout, trip.DepartureDate)
		if err != nil {
			fields["trip.departure_date"] = "not a valid date"
		}
	}

	if trip.TripType == models.TripRoundTrip {
		if trip.ReturnDate == "" {
			fields["trip.return_date"] = "required for a round-trip"
		} else if ret, err := time.Parse(models.DateLayout, trip.ReturnDate); err != nil {
			fields["trip.return_date"] = "not a valid date"
		} else if !dep.IsZero() && ret.Before(dep) {
			fields["trip.return_date"] = "must not be before the departure date"
		}
	}
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
