package adapter

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ObjectSummary is the fixed projection of one describe-global entry.
type ObjectSummary struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Custom     bool   `json:"custom"`
	Queryable  bool   `json:"queryable"`
	Searchable bool   `json:"searchable"`
	Createable bool   `json:"createable"`
	Updateable bool   `json:"updateable"`
	Deletable  bool   `json:"deletable"`
}

// ListObjectsResult is the output of list_objects.
type ListObjectsResult struct {
	Objects []ObjectSummary `json:"objects"`
}

// PicklistValue is one allowed value of a picklist field.
type PicklistValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FieldDescriptor is the fixed projection of one describe field.
type FieldDescriptor struct {
	Name           string          `json:"name"`
	Label          string          `json:"label"`
	Type           string          `json:"type"`
	Length         *int            `json:"length"`
	Precision      *int            `json:"precision"`
	Scale          *int            `json:"scale"`
	Required       bool            `json:"required"`
	Unique         bool            `json:"unique"`
	Createable     bool            `json:"createable"`
	Updateable     bool            `json:"updateable"`
	Calculated     bool            `json:"calculated"`
	DefaultValue   any             `json:"defaultValue"`
	PicklistValues []PicklistValue `json:"picklistValues"`
	ReferenceTo    []string        `json:"referenceTo,omitempty"`
}

// DescribeObjectResult is the output of describe_object.
type DescribeObjectResult struct {
	Name   string            `json:"name"`
	Label  string            `json:"label"`
	Fields []FieldDescriptor `json:"fields"`
}

// Row is one query record. It marshals to a JSON object in column order.
type Row = *orderedmap.OrderedMap[string, any]

// QueryResult is the output of execute_soql_query.
type QueryResult struct {
	Query    string   `json:"query"`
	Rows     []Row    `json:"rows"`
	RowCount int      `json:"row_count"`
	Columns  []string `json:"columns"`
}
