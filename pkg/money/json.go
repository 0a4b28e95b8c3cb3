package money

import (
	"encoding/json"
	"fmt"
)

// Amounts travel as decimal strings on the wire so no JSON number/float
// representation ever touches a monetary value.

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrFormat, data)
	}

	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
