// Package cql builds GeoServer CQL filter expressions from parameter objects.
//
// Clauses are described as a field, an operator and a value rather than as
// text. Encode validates field names, quotes string literals and rejects
// non-finite numbers, so caller-supplied values can never change the shape
// of the expression.
package cql

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	apierrors "github.com/olgasafonova/volcano-mcp-server/internal/errors"
)

// Op is a comparison operator.
type Op int

const (
	OpEqual      Op = iota // field = value
	OpLike                 // field LIKE '%value%'
	OpAtLeast              // field >= value
	OpAtMost               // field <= value
	OpIsNull               // field IS NULL
	OpInSubquery           // field IN (SELECT ... FROM ... WHERE ...)
)

func (o Op) String() string {
	switch o {
	case OpEqual:
		return "="
	case OpLike:
		return "LIKE"
	case OpAtLeast:
		return ">="
	case OpAtMost:
		return "<="
	case OpIsNull:
		return "IS NULL"
	case OpInSubquery:
		return "IN"
	default:
		return "unknown"
	}
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Clause is a single predicate.
type Clause struct {
	Field string
	Op    Op
	Value any // string or number; unused for OpIsNull and OpInSubquery
	Sub   *Subquery
}

// Subquery selects Field from Layer where Where holds.
type Subquery struct {
	Field string
	Layer string
	Where Clause
}

// Contains matches records whose field contains s.
func Contains(field, s string) Clause {
	return Clause{Field: field, Op: OpLike, Value: s}
}

// Equals matches records whose field equals v.
func Equals(field string, v any) Clause {
	return Clause{Field: field, Op: OpEqual, Value: v}
}

// AtLeast matches records whose field is >= v.
func AtLeast(field string, v float64) Clause {
	return Clause{Field: field, Op: OpAtLeast, Value: v}
}

// AtMost matches records whose field is <= v.
func AtMost(field string, v float64) Clause {
	return Clause{Field: field, Op: OpAtMost, Value: v}
}

// IsNull matches records with no value in field.
func IsNull(field string) Clause {
	return Clause{Field: field, Op: OpIsNull}
}

// In matches records whose field appears in subField of layer rows matching where.
func In(field, layer, subField string, where Clause) Clause {
	return Clause{
		Field: field,
		Op:    OpInSubquery,
		Sub:   &Subquery{Field: subField, Layer: layer, Where: where},
	}
}

// Encode renders the clause as CQL text.
func (c Clause) Encode() (string, error) {
	if err := ValidateIdentifier("field", c.Field); err != nil {
		return "", err
	}

	switch c.Op {
	case OpIsNull:
		return c.Field + " IS NULL", nil

	case OpLike:
		s, ok := c.Value.(string)
		if !ok {
			return "", apierrors.NewValidationError(c.Field, fmt.Sprint(c.Value), "LIKE requires a string value")
		}
		return c.Field + " LIKE " + quote("%"+s+"%"), nil

	case OpEqual, OpAtLeast, OpAtMost:
		lit, err := literal(c.Field, c.Value)
		if err != nil {
			return "", err
		}
		if c.Op != OpEqual {
			if _, isString := c.Value.(string); isString {
				return "", apierrors.NewValidationError(c.Field, fmt.Sprint(c.Value), c.Op.String()+" requires a numeric value")
			}
		}
		return c.Field + " " + c.Op.String() + " " + lit, nil

	case OpInSubquery:
		if c.Sub == nil {
			return "", apierrors.NewValidationError(c.Field, "", "IN requires a subquery")
		}
		if err := ValidateIdentifier("layer", c.Sub.Layer); err != nil {
			return "", err
		}
		if err := ValidateIdentifier("field", c.Sub.Field); err != nil {
			return "", err
		}
		if c.Sub.Where.Op == OpInSubquery {
			return "", apierrors.NewValidationError(c.Field, "", "nested subqueries are not supported")
		}
		where, err := c.Sub.Where.Encode()
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s IN (SELECT %s FROM %s WHERE %s)", c.Field, c.Sub.Field, c.Sub.Layer, where), nil

	default:
		return "", apierrors.NewValidationError(c.Field, "", fmt.Sprintf("unsupported operator %d", int(c.Op)))
	}
}

// Filter is a conjunction of clauses.
type Filter []Clause

// And returns a copy of f with c appended.
func (f Filter) And(c Clause) Filter {
	out := make(Filter, len(f), len(f)+1)
	copy(out, f)
	return append(out, c)
}

// Encode renders every clause and joins them with " AND ".
// An empty filter encodes to the empty string.
func (f Filter) Encode() (string, error) {
	if len(f) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(f))
	for _, c := range f {
		s, err := c.Encode()
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " AND "), nil
}

// ValidateIdentifier checks that name is a bare CQL identifier.
func ValidateIdentifier(kind, name string) error {
	if !identifierRegex.MatchString(name) {
		return apierrors.NewValidationError(kind, name, "must be a plain identifier")
	}
	return nil
}

// quote renders s as a single-quoted CQL string literal.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func literal(field string, v any) (string, error) {
	switch x := v.(type) {
	case string:
		return quote(x), nil
	case float64:
		return formatNumber(field, x)
	case float32:
		return formatNumber(field, float64(x))
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	default:
		return "", apierrors.NewValidationError(field, fmt.Sprint(v), fmt.Sprintf("unsupported value type %T", v))
	}
}

func formatNumber(field string, v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", apierrors.NewValidationError(field, fmt.Sprint(v), "must be a finite number")
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}
