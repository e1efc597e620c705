// Package adapter exposes the Salesforce tools as plain Go operations with
// fixed output shapes and a single tagged error type.
package adapter

import (
	"context"
	"strings"

	"sfmcp/internal/salesforce"
	"sfmcp/pkg/logging"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	subsystem = "Adapter"

	// attributesKey is the per-record bookkeeping key Salesforce adds to every
	// record and nested relationship record.
	attributesKey = "attributes"

	// countColumn names the synthetic column produced for SELECT COUNT() queries.
	countColumn = "cnt"
)

// Client is the part of the Salesforce client the adapter needs.
type Client interface {
	DescribeGlobal(ctx context.Context) (*salesforce.DescribeGlobalResult, error)
	DescribeSObject(ctx context.Context, name string) (*salesforce.SObjectDescribe, error)
	Query(ctx context.Context, soql string) (*salesforce.QueryResult, error)
}

// Adapter translates tool calls into Salesforce calls and projects the
// responses onto fixed output shapes. It keeps no state between calls.
type Adapter struct {
	client Client
}

// New returns an Adapter that uses client for every remote call.
func New(client Client) *Adapter {
	return &Adapter{client: client}
}

// ListObjects returns a summary of every object type visible to the session.
func (a *Adapter) ListObjects(ctx context.Context) (*ListObjectsResult, error) {
	global, err := a.client.DescribeGlobal(ctx)
	if err != nil {
		return nil, classify(err)
	}

	objects := make([]ObjectSummary, 0, len(global.SObjects))
	for _, o := range global.SObjects {
		objects = append(objects, ObjectSummary{
			Name:       o.Name,
			Label:      o.Label,
			Custom:     o.Custom,
			Queryable:  o.Queryable,
			Searchable: o.Searchable,
			Createable: o.Createable,
			Updateable: o.Updateable,
			Deletable:  o.Deletable,
		})
	}

	logging.Debug(subsystem, "Listed %d objects", len(objects))
	return &ListObjectsResult{Objects: objects}, nil
}

// DescribeObject returns the field definitions of one object type.
func (a *Adapter) DescribeObject(ctx context.Context, objectName string) (*DescribeObjectResult, error) {
	if strings.TrimSpace(objectName) == "" {
		return nil, invalidRequest("object_name must not be empty")
	}

	desc, err := a.client.DescribeSObject(ctx, objectName)
	if err != nil {
		return nil, classify(err)
	}

	fields := make([]FieldDescriptor, 0, len(desc.Fields))
	for _, f := range desc.Fields {
		fields = append(fields, projectField(f))
	}

	logging.Debug(subsystem, "Described %s with %d fields", desc.Name, len(fields))
	return &DescribeObjectResult{Name: desc.Name, Label: desc.Label, Fields: fields}, nil
}

func projectField(f salesforce.Field) FieldDescriptor {
	picklist := make([]PicklistValue, 0, len(f.PicklistValues))
	for _, p := range f.PicklistValues {
		picklist = append(picklist, PicklistValue{Label: p.Label, Value: p.Value})
	}

	var refs []string
	if len(f.ReferenceTo) > 0 {
		refs = append(refs, f.ReferenceTo...)
	}

	return FieldDescriptor{
		Name:           f.Name,
		Label:          f.Label,
		Type:           f.Type,
		Length:         f.Length,
		Precision:      f.Precision,
		Scale:          f.Scale,
		Required:       !f.Nillable,
		Unique:         f.Unique,
		Createable:     f.Createable,
		Updateable:     f.Updateable,
		Calculated:     f.Calculated,
		DefaultValue:   f.DefaultValue,
		PicklistValues: picklist,
		ReferenceTo:    refs,
	}
}

// ExecuteSOQLQuery runs query verbatim and returns its rows in service order.
func (a *Adapter) ExecuteSOQLQuery(ctx context.Context, query string) (*QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, invalidRequest("query must not be empty")
	}

	res, err := a.client.Query(ctx, query)
	if err != nil {
		return nil, classify(err)
	}

	rows := make([]Row, 0, len(res.Records))
	for _, rec := range res.Records {
		rows = append(rows, stripRecord(rec))
	}

	columns := []string{}
	if len(rows) > 0 {
		for pair := rows[0].Oldest(); pair != nil; pair = pair.Next() {
			columns = append(columns, pair.Key)
		}
	} else if res.TotalSize > 0 {
		// SELECT COUNT() reports only totalSize.
		row := orderedmap.New[string, any]()
		row.Set(countColumn, res.TotalSize)
		rows = append(rows, row)
		columns = append(columns, countColumn)
	}

	logging.Debug(subsystem, "Query returned %d rows (totalSize=%d)", len(rows), res.TotalSize)
	return &QueryResult{
		Query:    query,
		Rows:     rows,
		RowCount: len(rows),
		Columns:  columns,
	}, nil
}

// stripRecord copies rec without attributes keys, at every level.
func stripRecord(rec *orderedmap.OrderedMap[string, any]) Row {
	out := orderedmap.New[string, any]()
	if rec == nil {
		return out
	}
	for pair := rec.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == attributesKey {
			continue
		}
		out.Set(pair.Key, stripValue(pair.Value))
	}
	return out
}

func stripValue(v any) any {
	switch val := v.(type) {
	case *orderedmap.OrderedMap[string, any]:
		return stripRecord(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = stripValue(item)
		}
		return out
	default:
		return v
	}
}
