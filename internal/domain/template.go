package domain

import "encoding/json"

// Template represents a reusable incident message template. Beyond the
// known fields, callers may attach arbitrary extra fields; they are kept
// verbatim and round-tripped through persistence.
type Template struct {
	ID           string
	Name         string
	Body         string
	UpdateStatus IncidentStatus
	Extra        map[string]json.RawMessage
}

// templateKnownKeys are the JSON keys owned by the struct fields.
var templateKnownKeys = map[string]struct{}{
	"id": {}, "name": {}, "body": {}, "update_status": {},
}

// MarshalJSON flattens Extra alongside the known fields.
func (t Template) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(t.Extra)+4)
	for k, v := range t.Extra {
		out[k] = v
	}
	out["id"] = t.ID
	out["name"] = t.Name
	out["body"] = t.Body
	if t.UpdateStatus != "" {
		out["update_status"] = t.UpdateStatus
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits known fields from free-form extras.
func (t *Template) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	type known struct {
		ID           string         `json:"id"`
		Name         string         `json:"name"`
		Body         string         `json:"body"`
		UpdateStatus IncidentStatus `json:"update_status"`
	}
	var k known
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}
	t.ID = k.ID
	t.Name = k.Name
	t.Body = k.Body
	t.UpdateStatus = k.UpdateStatus
	t.Extra = nil
	for key, v := range raw {
		if _, ok := templateKnownKeys[key]; ok {
			continue
		}
		if t.Extra == nil {
			t.Extra = make(map[string]json.RawMessage)
		}
		t.Extra[key] = v
	}
	return nil
}
