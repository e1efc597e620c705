package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool names.
const (
	ToolListObjects      = "list_objects"
	ToolDescribeObject   = "describe_object"
	ToolExecuteSOQLQuery = "execute_soql_query"
)

const soqlReference = "https://developer.salesforce.com/docs/atlas.en-us.soql_sosl.meta/soql_sosl/sforce_api_calls_soql_select.htm"

func listObjectsTool() mcp.Tool {
	return mcp.NewTool(ToolListObjects,
		mcp.WithDescription("List all available Salesforce objects. Returns {objects: [...]} where each "+
			"entry has name, label, custom, queryable, searchable, createable, updateable and deletable."),
	)
}

func describeObjectTool() mcp.Tool {
	return mcp.NewTool(ToolDescribeObject,
		mcp.WithDescription("Get all fields for a specific Salesforce object. Returns {name, label, fields: [...]} "+
			"with type, length, precision, scale, required, unique, picklist values and reference targets per field."),
		mcp.WithString("object_name",
			mcp.Required(),
			mcp.Description("The API name of the Salesforce object (e.g. 'Account', 'Contact', 'Invoice__c')"),
		),
	)
}

func executeSOQLQueryTool() mcp.Tool {
	return mcp.NewTool(ToolExecuteSOQLQuery,
		mcp.WithDescription("Execute a SOQL query against Salesforce. Returns {query, rows, row_count, columns}.\n\n"+
			"Before constructing SOQL queries, read the official documentation: "+soqlReference+"\n\n"+
			"Important SOQL rules:\n"+
			"1. SELECT * is not supported; list the columns explicitly.\n"+
			"2. Aggregate queries (COUNT, SUM, AVG, ...) cannot use LIMIT."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The SOQL query string (e.g. 'SELECT Id, Name FROM Account LIMIT 10')"),
		),
	)
}
