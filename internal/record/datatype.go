package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrInvalidType  = errors.New("flatsql: invalid data type")
	ErrInvalidInt   = errors.New("flatsql: invalid integer value")
	ErrInvalidFloat = errors.New("flatsql: invalid float value")
	ErrInvalidStr   = errors.New("flatsql: string value too long")
	ErrInvalidEnum  = errors.New("flatsql: value is not an enum member")
	ErrInvalidBool  = errors.New("flatsql: invalid boolean value")
)

// DefaultVarcharSize is used for VARCHAR and VARCHAR() without a size.
const DefaultVarcharSize = 255

type Kind uint8

const (
	KindInteger Kind = iota + 1
	KindInt
	KindFloat
	KindDec
	KindText
	KindVarchar
	KindEnum
	KindBoolean
	KindBool
)

var kindNames = map[Kind]string{
	KindInteger: "INTEGER",
	KindInt:     "INT",
	KindFloat:   "FLOAT",
	KindDec:     "DEC",
	KindText:    "TEXT",
	KindVarchar: "VARCHAR",
	KindEnum:    "ENUM",
	KindBoolean: "BOOLEAN",
	KindBool:    "BOOL",
}

// nullary keywords, matched against the uppercased token.
var keywordKinds = map[string]Kind{
	"INTEGER": KindInteger,
	"INT":     KindInt,
	"FLOAT":   KindFloat,
	"DEC":     KindDec,
	"TEXT":    KindText,
	"BOOLEAN": KindBoolean,
	"BOOL":    KindBool,
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// DataType is a column type. Size is only meaningful for VARCHAR and
// Values only for ENUM.
type DataType struct {
	Kind   Kind
	Size   uint32
	Values []string
}

// Of returns the nullary type of the given kind.
func Of(k Kind) DataType { return DataType{Kind: k} }

func Varchar(size uint32) DataType { return DataType{Kind: KindVarchar, Size: size} }

func Enum(values ...string) DataType { return DataType{Kind: KindEnum, Values: values} }

var (
	reVarchar = regexp.MustCompile(`(?i)^varchar\s*(?:\(\s*(\d*)\s*\))?$`)
	reEnum    = regexp.MustCompile(`(?is)^enum\s*\((.*)\)$`)
)

// ParseType resolves a column type token such as "int", "varchar(10)" or
// "enum('a', 'b')".
func ParseType(token string) (DataType, error) {
	tok := strings.TrimSpace(token)

	if m := reVarchar.FindStringSubmatch(tok); m != nil {
		if m[1] == "" {
			return Varchar(DefaultVarcharSize), nil
		}
		size, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			return DataType{}, fmt.Errorf("%w: %s", ErrInvalidType, token)
		}
		return Varchar(uint32(size)), nil
	}

	if m := reEnum.FindStringSubmatch(tok); m != nil {
		var values []string
		for _, entry := range strings.Split(m[1], ",") {
			v := unquote(strings.TrimSpace(entry))
			if strings.TrimSpace(v) == "" {
				continue
			}
			values = append(values, v)
		}
		return Enum(values...), nil
	}

	if k, ok := keywordKinds[strings.ToUpper(tok)]; ok {
		return Of(k), nil
	}
	return DataType{}, fmt.Errorf("%w: %s", ErrInvalidType, token)
}

// MustParseType is ParseType for literals known to be valid.
func MustParseType(token string) DataType {
	dt, err := ParseType(token)
	if err != nil {
		panic(err)
	}
	return dt
}

// unquote strips one pair of matching single or double quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Validate checks that raw is an acceptable text value for the type.
func (dt DataType) Validate(raw string) error {
	switch dt.Kind {
	case KindInteger, KindInt:
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidInt, raw)
		}
	case KindFloat, KindDec:
		if !isFloat(raw) {
			return fmt.Errorf("%w: %q", ErrInvalidFloat, raw)
		}
	case KindVarchar:
		if n := utf8.RuneCountInString(norm.NFC.String(raw)); n > int(dt.Size) {
			return fmt.Errorf("%w: %d characters, limit %d", ErrInvalidStr, n, dt.Size)
		}
	case KindEnum:
		for _, v := range dt.Values {
			if v == raw {
				return nil
			}
		}
		return fmt.Errorf("%w: %q not in %s", ErrInvalidEnum, raw, dt)
	case KindBoolean, KindBool:
		if !strings.EqualFold(raw, "true") && !strings.EqualFold(raw, "false") {
			return fmt.Errorf("%w: %q", ErrInvalidBool, raw)
		}
	case KindText:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidType, dt.Kind)
	}
	return nil
}

// isFloat accepts decimal literals only; out-of-range values round to ±Inf.
func isFloat(raw string) bool {
	digits := strings.TrimLeft(raw, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return false
	}
	_, err := strconv.ParseFloat(raw, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}

// Default is the value a newly declared column of this type starts from.
func (dt DataType) Default() string {
	switch dt.Kind {
	case KindInteger, KindInt:
		return "0"
	case KindFloat, KindDec:
		return "0.0"
	case KindEnum:
		if len(dt.Values) > 0 {
			return dt.Values[0]
		}
		return ""
	case KindBoolean, KindBool:
		return "false"
	default:
		return ""
	}
}

func (dt DataType) String() string {
	switch dt.Kind {
	case KindVarchar:
		return fmt.Sprintf("VARCHAR(%d)", dt.Size)
	case KindEnum:
		quoted := make([]string, len(dt.Values))
		for i, v := range dt.Values {
			quoted[i] = "'" + v + "'"
		}
		return "ENUM(" + strings.Join(quoted, ",") + ")"
	default:
		return dt.Kind.String()
	}
}

// MarshalJSON writes nullary types as a bare string ("INT") and
// parameterized ones as a single-key object ({"VARCHAR": 255}).
func (dt DataType) MarshalJSON() ([]byte, error) {
	switch dt.Kind {
	case KindVarchar:
		return json.Marshal(map[string]uint32{"VARCHAR": dt.Size})
	case KindEnum:
		values := dt.Values
		if values == nil {
			values = []string{}
		}
		return json.Marshal(map[string][]string{"ENUM": values})
	}
	if _, ok := kindNames[dt.Kind]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidType, dt.Kind)
	}
	return json.Marshal(dt.Kind.String())
}

func (dt *DataType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		k, ok := keywordKinds[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrInvalidType, name)
		}
		*dt = Of(k)
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if len(obj) != 1 {
		return fmt.Errorf("%w: %s", ErrInvalidType, data)
	}
	if raw, ok := obj["VARCHAR"]; ok {
		var size uint32
		if err := json.Unmarshal(raw, &size); err != nil {
			return err
		}
		*dt = Varchar(size)
		return nil
	}
	if raw, ok := obj["ENUM"]; ok {
		var values []string
		if err := json.Unmarshal(raw, &values); err != nil {
			return err
		}
		*dt = Enum(values...)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidType, data)
}
