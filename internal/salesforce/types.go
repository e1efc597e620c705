package salesforce

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DescribeGlobalResult is the body of GET /sobjects/.
type DescribeGlobalResult struct {
	Encoding     string           `json:"encoding"`
	MaxBatchSize int              `json:"maxBatchSize"`
	SObjects     []SObjectSummary `json:"sobjects"`
}

// SObjectSummary is one entry of the global describe.
type SObjectSummary struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	KeyPrefix  string `json:"keyPrefix"`
	Custom     bool   `json:"custom"`
	Queryable  bool   `json:"queryable"`
	Searchable bool   `json:"searchable"`
	Createable bool   `json:"createable"`
	Updateable bool   `json:"updateable"`
	Deletable  bool   `json:"deletable"`
}

// SObjectDescribe is the body of GET /sobjects/{name}/describe/.
type SObjectDescribe struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Custom bool    `json:"custom"`
	Fields []Field `json:"fields"`
}

// Field is one field of an object describe.
type Field struct {
	Name           string          `json:"name"`
	Label          string          `json:"label"`
	Type           string          `json:"type"`
	Length         *int            `json:"length"`
	Precision      *int            `json:"precision"`
	Scale          *int            `json:"scale"`
	Nillable       bool            `json:"nillable"`
	Unique         bool            `json:"unique"`
	Createable     bool            `json:"createable"`
	Updateable     bool            `json:"updateable"`
	Calculated     bool            `json:"calculated"`
	DefaultValue   any             `json:"defaultValue"`
	PicklistValues []PicklistEntry `json:"picklistValues"`
	ReferenceTo    []string        `json:"referenceTo"`
}

// PicklistEntry is one allowed value of a picklist field.
type PicklistEntry struct {
	Label        string `json:"label"`
	Value        string `json:"value"`
	Active       bool   `json:"active"`
	DefaultValue bool   `json:"defaultValue"`
}

// Record is a single query row. Keys keep the order the service sent them in.
type Record = *orderedmap.OrderedMap[string, any]

// QueryResult is the body of GET /query/.
type QueryResult struct {
	TotalSize      int      `json:"totalSize"`
	Done           bool     `json:"done"`
	NextRecordsURL string   `json:"nextRecordsUrl,omitempty"`
	Records        []Record `json:"records"`
}

// UnmarshalJSON decodes records into ordered maps. Nested objects such as
// parent relationships and child subqueries are ordered maps as well, and
// numbers stay json.Number so they are written back unchanged.
func (q *QueryResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		TotalSize      int               `json:"totalSize"`
		Done           bool              `json:"done"`
		NextRecordsURL string            `json:"nextRecordsUrl"`
		Records        []json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	records := make([]Record, 0, len(raw.Records))
	for i, r := range raw.Records {
		rec, err := decodeRecord(r)
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}

	q.TotalSize = raw.TotalSize
	q.Done = raw.Done
	q.NextRecordsURL = raw.NextRecordsURL
	q.Records = records
	return nil
}

func decodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	rec, ok := v.(Record)
	if !ok {
		return nil, fmt.Errorf("expected object, got %T", v)
	}
	return rec, nil
}

// decodeValue reads one JSON value from dec.
func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := orderedmap.New[string, any]()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			val, err := decodeValue(dec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			obj.Set(key, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			val, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, val)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", delim)
	}
}
