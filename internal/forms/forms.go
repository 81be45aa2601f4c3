// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package forms binds dialog input to typed requests and validates them
// locally. A failed check is a *fault.ValidationError keyed by form field
// name; it never reaches the server.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/eduportal-tui/internal/fault"
	"github.com/jeranaias/eduportal-tui/internal/model"
)

// MinPasswordLength is the portal's password floor.
const MinPasswordLength = 6

// =============================================================================
// REQUESTS
// =============================================================================

// ChangePassword is the change-password dialog.
type ChangePassword struct {
	Current string `form:"current_password,raw" json:"current_password" validate:"required"`
	New     string `form:"new_password,raw" json:"new_password" validate:"required,min=6"`
	Confirm string `form:"confirm_password,raw" json:"-" validate:"required,eqfield=New"`
}

// AddAcademic is the add and edit academic dialog.
type AddAcademic struct {
	Name          string `form:"name" json:"name" validate:"required,max=100"`
	Department    string `form:"department" json:"department" validate:"required,max=100"`
	Qualification string `form:"qualification" json:"qualification" validate:"required,max=100"`
	Experience    string `form:"experience" json:"experience" validate:"required,intrange=0:60"`
	Email         string `form:"email" json:"email" validate:"required,email"`
	Phone         string `form:"phone" json:"phone" validate:"required,phone"`
}

// AddStudent is the add and edit student dialog.
type AddStudent struct {
	StudentName string `form:"student_name" json:"student_name" validate:"required,max=100"`
	Section     string `form:"section" json:"section" validate:"required,alphanum,max=5"`
}

// AddEvent is the add-event dialog.
type AddEvent struct {
	Title         string `form:"title" json:"title" validate:"required,max=150"`
	Date          string `form:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Time          string `form:"time" json:"time" validate:"required,clock"`
	OrganizerName string `form:"organizer_name" json:"organizer_name" validate:"required,max=100"`
	ClubName      string `form:"club_name" json:"club_name" validate:"required,max=100"`
	Capacity      string `form:"capacity" json:"capacity" validate:"required,intrange=1:10000"`
	ChiefGuest    string `form:"chief_guest" json:"chief_guest,omitempty" validate:"max=100"`
	Description   string `form:"description" json:"description,omitempty" validate:"max=1000"`
	Venue         string `form:"venue" json:"venue,omitempty" validate:"max=100"`
}

// AddTimetable is the add and edit class dialog.
type AddTimetable struct {
	Day         string `form:"day" json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday"`
	StartTime   string `form:"start_time" json:"start_time" validate:"required,clock"`
	EndTime     string `form:"end_time" json:"end_time" validate:"required,clock"`
	ClassName   string `form:"class_name" json:"class_name" validate:"required,max=100"`
	FacultyName string `form:"faculty_name" json:"faculty_name" validate:"required,max=100"`
	Subject     string `form:"subject" json:"subject" validate:"required,max=100"`
	Section     string `form:"section" json:"section" validate:"required,alphanum,max=5"`
	Classroom   string `form:"classroom" json:"classroom,omitempty" validate:"max=50"`
	Building    string `form:"building" json:"building,omitempty" validate:"max=50"`
}

// AddUser is the add-user dialog.
type AddUser struct {
	Name string `form:"name" json:"name" validate:"required,max=100"`
	Role string `form:"role" json:"role" validate:"required,oneof=Faculty Student"`
}

// ClearData is the data management request.
type ClearData struct {
	Type     string   `form:"type" json:"type" validate:"required,oneof=all partial"`
	Sections []string `form:"sections" json:"sections,omitempty" validate:"required_if=Type partial,dive,alphanum"`
}

// ResetPassword is the forgot-password request.
type ResetPassword struct {
	Username    string `form:"username" json:"username" validate:"required"`
	DOBYear     string `form:"dob_year" json:"dob_year" validate:"required,len=4,numeric"`
	NewPassword string `form:"new_password,raw" json:"new_password" validate:"required,min=6"`
}

// =============================================================================
// VALIDATOR
// =============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _ := formTag(f)
		return name
	})
	must(v.RegisterValidation("intrange", validateIntRange))
	must(v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		_, ok := ParseClock(fl.Field().String())
		return ok
	}))
	must(v.RegisterValidation("phone", validatePhone))
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		t := sl.Current().Interface().(AddTimetable)
		start, ok1 := ParseClock(t.StartTime)
		end, ok2 := ParseClock(t.EndTime)
		if ok1 && ok2 && end <= start {
			sl.ReportError(t.EndTime, "end_time", "EndTime", "after_start", "")
		}
	}, AddTimetable{})
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// validateIntRange checks a numeric string against "lo:hi".
func validateIntRange(fl validator.FieldLevel) bool {
	lo, hi, ok := rangeParam(fl.Param())
	if !ok {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSpace(fl.Field().String()))
	return err == nil && n >= lo && n <= hi
}

func rangeParam(param string) (int, int, bool) {
	loS, hiS, found := strings.Cut(param, ":")
	if !found {
		return 0, 0, false
	}
	lo, err1 := strconv.Atoi(loS)
	hi, err2 := strconv.Atoi(hiS)
	return lo, hi, err1 == nil && err2 == nil
}

// validatePhone accepts 10 to 15 digits with an optional leading plus.
func validatePhone(fl validator.FieldLevel) bool {
	s := strings.TrimPrefix(strings.ReplaceAll(fl.Field().String(), " ", ""), "+")
	if len(s) < 10 || len(s) > 15 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseClock parses "15:04" or "3:04 PM" into minutes after midnight.
func ParseClock(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range []string{"15:04", "3:04 PM", "03:04 PM", "3:04PM"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

// =============================================================================
// BINDING
// =============================================================================

// formTag returns the field's form name and whether its value is bound raw.
// Fields without a form tag fall back to their json name.
func formTag(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("form")
	if tag == "" || tag == "-" {
		if js, _, _ := strings.Cut(f.Tag.Get("json"), ","); js != "" && js != "-" {
			return js, false
		}
		return f.Name, false
	}
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts == "raw"
}

// Bind copies values into the string fields of v (a struct pointer) by form
// name. Values are trimmed and NFKC-normalized unless the field is raw.
// []string fields take a comma-separated list.
func Bind(values map[string]string, v any) {
	rv := reflect.ValueOf(v).Elem()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		name, raw := formTag(rt.Field(i))
		value, ok := values[name]
		if !ok {
			continue
		}
		if !raw {
			value = Normalize(value)
		}
		field := rv.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(value)
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				field.Set(reflect.ValueOf(SplitList(value)))
			}
		}
	}
}

// Normalize trims s and folds compatibility characters.
func Normalize(s string) string {
	return strings.TrimSpace(norm.NFKC.String(s))
}

// SplitList splits a comma-separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.ToUpper(strings.TrimSpace(part)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks v and returns a *fault.ValidationError listing every failed
// field, or nil.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &fault.ValidationError{}
	for _, fe := range verrs {
		out.Add(fieldName(fe), message(fe))
	}
	return out
}

// BindAndValidate binds values into v and validates it.
func BindAndValidate(values map[string]string, v any) error {
	Bind(values, v)
	return Validate(v)
}

// ValidateProfile checks the profile form.
func ValidateProfile(p *model.Profile) error {
	return Validate(p)
}

// fieldName strips dive indexes ("sections[0]" becomes "sections").
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}
	return name
}

var titleCaser = cases.Title(language.English)

// Label turns a form name into a display label ("first_name" -> "First Name").
func Label(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}

func message(fe validator.FieldError) string {
	label := Label(fieldName(fe))
	switch fe.Tag() {
	case "required", "required_if":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", label, fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "email":
		return "Invalid email format"
	case "phone", "e164", "numeric":
		if fieldName(fe) == "phone" {
			return "Invalid phone number format"
		}
		return label + " must be a number"
	case "intrange":
		lo, hi, _ := rangeParam(fe.Param())
		return fmt.Sprintf("%s must be a number between %d and %d", label, lo, hi)
	case "datetime":
		return label + " must be a date (YYYY-MM-DD)"
	case "clock":
		return label + " must be a time (HH:MM)"
	case "after_start":
		return "End time must be after start time"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "alphanum":
		return label + " may contain only letters and digits"
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}
