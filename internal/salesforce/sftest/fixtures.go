package sftest

// SOQL strings with registered responses.
const (
	QueryTwoAccounts    = "SELECT Id, Name FROM Account LIMIT 2"
	QueryNoRows         = "SELECT Id FROM Account WHERE Name = 'Nobody'"
	QueryCount          = "SELECT COUNT() FROM Account"
	QueryRelationship   = "SELECT Name, Owner.Name FROM Account LIMIT 1"
	QueryAggregateAlias = "SELECT Industry, COUNT(Id) total FROM Account GROUP BY Industry"
	QueryChildContacts  = "SELECT Name, (SELECT LastName, Email FROM Contacts) FROM Account LIMIT 1"
)

const soapLoginResponse = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns="urn:partner.soap.sforce.com" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <soapenv:Body>
    <loginResponse>
      <result>
        <metadataServerUrl>%[1]s/services/Soap/m/%[2]s/00Dfake</metadataServerUrl>
        <passwordExpired>false</passwordExpired>
        <sandbox>false</sandbox>
        <serverUrl>%[1]s/services/Soap/u/%[2]s/00Dfake</serverUrl>
        <sessionId>%[3]s</sessionId>
        <userId>005fake</userId>
      </result>
    </loginResponse>
  </soapenv:Body>
</soapenv:Envelope>`

const soapFault = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:sf="urn:fault.partner.soap.sforce.com" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <soapenv:Body>
    <soapenv:Fault>
      <faultcode>sf:INVALID_LOGIN</faultcode>
      <faultstring>INVALID_LOGIN: Invalid username, password, security token; or user locked out.</faultstring>
    </soapenv:Fault>
  </soapenv:Body>
</soapenv:Envelope>`

// DescribeGlobalJSON lists four objects. Entries carry extra keys (keyPrefix,
// urls, layoutable, ...) that must not leak into tool output.
const DescribeGlobalJSON = `{
  "encoding": "UTF-8",
  "maxBatchSize": 200,
  "sobjects": [
    {"activateable": false, "createable": true, "custom": false, "customSetting": false, "deletable": true,
     "keyPrefix": "001", "label": "Account", "labelPlural": "Accounts", "layoutable": true, "name": "Account",
     "queryable": true, "searchable": true, "updateable": true,
     "urls": {"sobject": "/services/data/v59.0/sobjects/Account", "describe": "/services/data/v59.0/sobjects/Account/describe"}},
    {"createable": true, "custom": false, "deletable": true, "keyPrefix": "003", "label": "Contact",
     "name": "Contact", "queryable": true, "searchable": true, "updateable": true},
    {"createable": false, "custom": false, "deletable": false, "keyPrefix": "0Xo", "label": "Login Event",
     "name": "LoginEvent", "queryable": true, "searchable": false, "updateable": false},
    {"createable": true, "custom": true, "deletable": true, "keyPrefix": "a00", "label": "Invoice",
     "name": "Invoice__c", "queryable": true, "searchable": true, "updateable": true}
  ]
}`

// AccountDescribeJSON describes Account with five fields covering id, string,
// picklist, reference and currency types.
const AccountDescribeJSON = `{
  "name": "Account",
  "label": "Account",
  "custom": false,
  "keyPrefix": "001",
  "fields": [
    {"name": "Id", "label": "Account ID", "type": "id", "length": 18, "precision": 0, "scale": 0,
     "nillable": false, "unique": false, "createable": false, "updateable": false, "calculated": false,
     "defaultValue": null, "picklistValues": [], "referenceTo": [], "soapType": "tns:ID"},
    {"name": "Name", "label": "Account Name", "type": "string", "length": 255, "precision": 0, "scale": 0,
     "nillable": false, "unique": false, "createable": true, "updateable": true, "calculated": false,
     "defaultValue": null, "picklistValues": [], "referenceTo": []},
    {"name": "Industry", "label": "Industry", "type": "picklist", "length": 255, "precision": 0, "scale": 0,
     "nillable": true, "unique": false, "createable": true, "updateable": true, "calculated": false,
     "defaultValue": null,
     "picklistValues": [
       {"active": true, "defaultValue": false, "label": "Agriculture", "validFor": null, "value": "Agriculture"},
       {"active": true, "defaultValue": false, "label": "Banking", "validFor": null, "value": "Banking"},
       {"active": true, "defaultValue": false, "label": "Technology", "validFor": null, "value": "Technology"}
     ],
     "referenceTo": []},
    {"name": "ParentId", "label": "Parent Account ID", "type": "reference", "length": 18, "precision": 0, "scale": 0,
     "nillable": true, "unique": false, "createable": true, "updateable": true, "calculated": false,
     "defaultValue": null, "picklistValues": [], "referenceTo": ["Account"], "relationshipName": "Parent"},
    {"name": "AnnualRevenue", "label": "Annual Revenue", "type": "currency", "length": 0, "precision": 18, "scale": 0,
     "nillable": true, "unique": false, "createable": true, "updateable": true, "calculated": false,
     "defaultValue": 0, "picklistValues": [], "referenceTo": []}
  ]
}`

// TwoAccountsJSON answers QueryTwoAccounts.
const TwoAccountsJSON = `{
  "totalSize": 2,
  "done": true,
  "records": [
    {"attributes": {"type": "Account", "url": "/services/data/v59.0/sobjects/Account/001000000000001AAA"},
     "Id": "001000000000001AAA", "Name": "Acme"},
    {"attributes": {"type": "Account", "url": "/services/data/v59.0/sobjects/Account/002000000000002AAA"},
     "Id": "002000000000002AAA", "Name": "Globex"}
  ]
}`

// NoRowsJSON answers QueryNoRows.
const NoRowsJSON = `{"totalSize": 0, "done": true, "records": []}`

// CountJSON answers QueryCount: the COUNT() form returns only totalSize.
const CountJSON = `{"totalSize": 42, "done": true, "records": []}`

// RelationshipJSON answers QueryRelationship with a nested parent record.
const RelationshipJSON = `{
  "totalSize": 1,
  "done": true,
  "records": [
    {"attributes": {"type": "Account", "url": "/services/data/v59.0/sobjects/Account/001000000000001AAA"},
     "Name": "Acme",
     "Owner": {"attributes": {"type": "User", "url": "/services/data/v59.0/sobjects/User/005000000000001AAA"},
               "Name": "Wile E. Coyote"}}
  ]
}`

// ChildContactsJSON answers QueryChildContacts. The child subquery is a nested
// query result whose records carry their own attributes. AnnualRevenue is a
// large number that must survive without float rounding.
const ChildContactsJSON = `{
  "totalSize": 1,
  "done": true,
  "records": [
    {"attributes": {"type": "Account", "url": "/services/data/v59.0/sobjects/Account/001000000000001AAA"},
     "Name": "Acme",
     "AnnualRevenue": 12345678901234567890,
     "Contacts": {
       "totalSize": 2,
       "done": true,
       "records": [
         {"attributes": {"type": "Contact", "url": "/services/data/v59.0/sobjects/Contact/003000000000001AAA"},
          "LastName": "Runner", "Email": "road@acme.example"},
         {"attributes": {"type": "Contact", "url": "/services/data/v59.0/sobjects/Contact/003000000000002AAA"},
          "LastName": "Coyote", "Email": null}
       ]
     }}
  ]
}`

// AggregateAliasJSON answers QueryAggregateAlias.
const AggregateAliasJSON = `{
  "totalSize": 2,
  "done": true,
  "records": [
    {"attributes": {"type": "AggregateResult"}, "Industry": "Technology", "total": 7},
    {"attributes": {"type": "AggregateResult"}, "Industry": "Banking", "total": 3}
  ]
}`
