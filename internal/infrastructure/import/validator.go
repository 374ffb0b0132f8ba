package csvimport

import (
	"net/mail"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FieldType represents the expected type of a field
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
	TypeEmail   FieldType = "email"
	TypeUUID    FieldType = "uuid"
)

// typeParsers checks that a raw cell value can be parsed as the rule's type.
var typeParsers = map[FieldType]func(value string, rule FieldRule) error{
	TypeString: func(string, FieldRule) error { return nil },
	TypeInt: func(v string, _ FieldRule) error {
		_, err := strconv.ParseInt(v, 10, 64)
		return err
	},
	TypeDecimal: func(v string, _ FieldRule) error {
		_, err := decimal.NewFromString(v)
		return err
	},
	TypeDate: func(v string, r FieldRule) error {
		_, err := time.Parse(r.DateFormat, v)
		return err
	},
	TypeEmail: func(v string, _ FieldRule) error {
		_, err := mail.ParseAddress(v)
		return err
	},
	TypeUUID: func(v string, _ FieldRule) error {
		_, err := uuid.Parse(v)
		return err
	},
}

// FieldRule defines validation rules for a single CSV column.
type FieldRule struct {
	Column      string
	Type        FieldType
	Required    bool
	MinLength   int
	MaxLength   int
	MinValue    *decimal.Decimal
	MaxValue    *decimal.Decimal
	Pattern     *regexp.Regexp
	PatternDesc string
	DateFormat  string
	CustomFunc  func(value string) error
}

// FieldRuleBuilder helps build field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field creates a new field rule builder
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{
		rule: FieldRule{
			Column:     column,
			Type:       TypeString,
			DateFormat: "2006-01-02", // Default date format
		},
	}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// String sets the field type to string
func (b *FieldRuleBuilder) String() *FieldRuleBuilder {
	b.rule.Type = TypeString
	return b
}

// Int sets the field type to integer
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Decimal sets the field type to decimal
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// Date sets the field type to date
func (b *FieldRuleBuilder) Date() *FieldRuleBuilder {
	b.rule.Type = TypeDate
	return b
}

// DateFormat sets the expected date format
func (b *FieldRuleBuilder) DateFormat(format string) *FieldRuleBuilder {
	b.rule.DateFormat = format
	return b
}

// Email sets the field type to email
func (b *FieldRuleBuilder) Email() *FieldRuleBuilder {
	b.rule.Type = TypeEmail
	return b
}

// UUID sets the field type to UUID
func (b *FieldRuleBuilder) UUID() *FieldRuleBuilder {
	b.rule.Type = TypeUUID
	return b
}

// MinLength sets the minimum length
func (b *FieldRuleBuilder) MinLength(n int) *FieldRuleBuilder {
	b.rule.MinLength = n
	return b
}

// MaxLength sets the maximum length
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// Range bounds numeric fields inclusively
func (b *FieldRuleBuilder) Range(min, max decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &min
	b.rule.MaxValue = &max
	return b
}

// Pattern sets a regex pattern for validation
func (b *FieldRuleBuilder) Pattern(pattern, description string) *FieldRuleBuilder {
	b.rule.Pattern = regexp.MustCompile(pattern)
	b.rule.PatternDesc = description
	return b
}

// Custom sets a custom validation function
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

// Build returns the built field rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator applies column rules row by row, accumulating errors.
// Rules run in declaration order so errors come out in column order.
type FieldValidator struct {
	rules  []FieldRule
	errors *ErrorCollection
}

// NewFieldValidator creates a new field validator
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:  rules,
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateRow validates all fields in a row. It returns false if the row
// produced at least one error.
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true
	for _, rule := range v.rules {
		if !v.validateField(row, rule) {
			ok = false
		}
	}
	return ok
}

func (v *FieldValidator) validateField(row *Row, rule FieldRule) bool {
	value := row.Get(rule.Column)

	if value == "" {
		if rule.Required {
			v.errors.AddRequiredError(row.LineNumber, rule.Column)
			return false
		}
		return true
	}

	if parse := typeParsers[rule.Type]; parse != nil {
		if err := parse(value, rule); err != nil {
			v.errors.AddTypeError(row.LineNumber, rule.Column, string(rule.Type), value)
			return false
		}
	}

	ok := true
	if (rule.MaxLength > 0 && len(value) > rule.MaxLength) ||
		(rule.MinLength > 0 && len(value) < rule.MinLength) {
		v.errors.AddLengthError(row.LineNumber, rule.Column, rule.MinLength, rule.MaxLength)
		ok = false
	}

	if outOfRange(value, rule.MinValue, rule.MaxValue) {
		minF, _ := rule.MinValue.Float64()
		maxF, _ := rule.MaxValue.Float64()
		v.errors.AddRangeError(row.LineNumber, rule.Column, minF, maxF)
		ok = false
	}

	if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
		v.errors.AddPatternError(row.LineNumber, rule.Column, rule.PatternDesc, value)
		ok = false
	}

	if rule.CustomFunc != nil {
		if err := rule.CustomFunc(value); err != nil {
			v.errors.AddValidationError(row.LineNumber, rule.Column, ErrCodeImportValidation, err.Error())
			ok = false
		}
	}

	return ok
}

// outOfRange reports whether a numeric value violates its bounds. Values
// that fail to parse were already rejected by the type check.
func outOfRange(value string, min, max *decimal.Decimal) bool {
	if min == nil || max == nil {
		return false
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}
	return d.LessThan(*min) || d.GreaterThan(*max)
}

// Errors returns the error collection
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}

// Reset clears accumulated errors so the validator can be reused.
func (v *FieldValidator) Reset() {
	v.errors.Clear()
}
