package custom

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Datetime represents a datetime. It is stored as an RFC3339 string in both
// JSON and BSON.
type Datetime time.Time

// Now returns the current UTC time as a Datetime.
func Now() Datetime {
	return Datetime(time.Now().UTC())
}

// Time returns the underlying time.Time.
func (d Datetime) Time() time.Time {
	return time.Time(d)
}

// IsZero reports whether the datetime is unset.
func (d Datetime) IsZero() bool {
	return time.Time(d).IsZero()
}

// MarshalJSON implements the json.Marshaler interface.
func (d Datetime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", time.Time(d).UTC().Format(time.RFC3339))), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Datetime) UnmarshalJSON(text []byte) error {
	got := strings.Trim(string(text), `"`)
	if got == "null" || got == "" {
		*d = Datetime{}
		return nil
	}

	t, err := time.Parse(time.RFC3339, got)
	if err != nil {
		return fmt.Errorf("invalid datetime: %w", err)
	}
	*d = Datetime(t)
	return nil
}

// MarshalBSONValue implements the bson.ValueMarshaler interface.
func (d Datetime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if d.IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(time.Time(d).UTC().Format(time.RFC3339))
}

// UnmarshalBSONValue implements the bson.ValueUnmarshaler interface.
func (d *Datetime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull {
		*d = Datetime{}
		return nil
	}

	var got string
	if err := bson.UnmarshalValue(t, data, &got); err != nil {
		return fmt.Errorf("error unmarshalling datetime: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339, got)
	if err != nil {
		return fmt.Errorf("invalid datetime: %s", got)
	}
	*d = Datetime(parsed)
	return nil
}

// String implements the fmt.Stringer interface.
func (d Datetime) String() string {
	return time.Time(d).Format(time.RFC3339)
}
