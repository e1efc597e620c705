package salesforce_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"sfmcp/internal/salesforce"
	"sfmcp/internal/salesforce/sftest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginURLForDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   string
	}{
		{"", "https://login.salesforce.com"},
		{"login", "https://login.salesforce.com"},
		{"test", "https://test.salesforce.com"},
		{"acme.my", "https://acme.my.salesforce.com"},
		{"acme--dev.sandbox.my", "https://acme--dev.sandbox.my.salesforce.com"},
		{"acme.my.salesforce.com", "https://acme.my.salesforce.com"},
		{"acme.my.salesforce.com/", "https://acme.my.salesforce.com"},
		{"acme.lightning.force.com", "https://acme.lightning.force.com"},
		{"https://acme.my.salesforce.com/", "https://acme.my.salesforce.com"},
		{"http://127.0.0.1:8080/", "http://127.0.0.1:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.want, salesforce.LoginURLForDomain(tt.domain))
		})
	}
}

func TestClient_SOAPLoginIsLazyAndReused(t *testing.T) {
	org := sftest.NewOrg(t)
	client := salesforce.NewClient(org.Options())
	defer client.Close()

	assert.Equal(t, 0, org.Logins(), "constructing a client must not log in")

	ctx := context.Background()
	_, err := client.DescribeGlobal(ctx)
	require.NoError(t, err)
	_, err = client.DescribeSObject(ctx, "Account")
	require.NoError(t, err)

	assert.Equal(t, 1, org.Logins())
	assert.Equal(t, 2, org.DataRequests())
}

func TestClient_OAuthLogin(t *testing.T) {
	org := sftest.NewOrg(t)
	client := salesforce.NewClient(org.OAuthOptions())

	sess, err := client.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, org.URL, sess.InstanceURL)
	assert.NotEmpty(t, sess.AccessToken)

	res, err := client.Query(context.Background(), sftest.QueryTwoAccounts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalSize)
}

func TestClient_LoginRejected(t *testing.T) {
	org := sftest.NewOrg(t)

	t.Run("soap", func(t *testing.T) {
		opts := org.Options()
		opts.Password = "wrong"
		_, err := salesforce.NewClient(opts).DescribeGlobal(context.Background())

		var loginErr *salesforce.LoginError
		require.True(t, errors.As(err, &loginErr), "got %v", err)
		assert.Equal(t, "INVALID_LOGIN", loginErr.Code)
		assert.Equal(t, "Invalid username, password, security token; or user locked out.", loginErr.Message)
	})

	t.Run("oauth", func(t *testing.T) {
		opts := org.OAuthOptions()
		opts.ClientSecret = "wrong"
		_, err := salesforce.NewClient(opts).DescribeGlobal(context.Background())

		var loginErr *salesforce.LoginError
		require.True(t, errors.As(err, &loginErr), "got %v", err)
		assert.Equal(t, "authentication failure", loginErr.Message)
	})

	assert.Equal(t, 0, org.DataRequests())
}

func TestClient_DescribeGlobal(t *testing.T) {
	org := sftest.NewOrg(t)
	client := salesforce.NewClient(org.Options())

	res, err := client.DescribeGlobal(context.Background())
	require.NoError(t, err)
	require.Len(t, res.SObjects, 4)
	assert.Equal(t, "Account", res.SObjects[0].Name)
	assert.Equal(t, "001", res.SObjects[0].KeyPrefix)
	assert.True(t, res.SObjects[3].Custom)
}

func TestClient_DescribeSObject(t *testing.T) {
	org := sftest.NewOrg(t)
	client := salesforce.NewClient(org.Options())

	res, err := client.DescribeSObject(context.Background(), "Account")
	require.NoError(t, err)
	require.Len(t, res.Fields, 5)

	industry := res.Fields[2]
	assert.Equal(t, "picklist", industry.Type)
	require.Len(t, industry.PicklistValues, 3)
	assert.Equal(t, "Banking", industry.PicklistValues[1].Value)

	parent := res.Fields[3]
	assert.Equal(t, []string{"Account"}, parent.ReferenceTo)
	require.NotNil(t, parent.Length)
	assert.Equal(t, 18, *parent.Length)
}

func TestClient_DescribeUnknownObject(t *testing.T) {
	org := sftest.NewOrg(t)
	client := salesforce.NewClient(org.Options())

	_, err := client.DescribeSObject(context.Background(), "Nope__c")

	var apiErr *salesforce.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "NOT_FOUND", apiErr.ErrorCode)
	assert.Equal(t, "The requested resource does not exist", apiErr.Message)
}

func TestClient_QueryPreservesFieldOrder(t *testing.T) {
	org := sftest.NewOrg(t)
	org.SetQuery("SELECT Name, Id, Industry FROM Account LIMIT 1", `{"totalSize":1,"done":true,"records":[
		{"attributes":{"type":"Account"},"Name":"Acme","Id":"001","Industry":null}]}`)
	client := salesforce.NewClient(org.Options())

	res, err := client.Query(context.Background(), "SELECT Name, Id, Industry FROM Account LIMIT 1")
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	var keys []string
	for pair := res.Records[0].Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"attributes", "Name", "Id", "Industry"}, keys)
}

func TestClient_QueryDecodesNestedObjectsInOrder(t *testing.T) {
	org := sftest.NewOrg(t)
	soql := "SELECT Name, Owner.Title, Owner.Email FROM Account LIMIT 1"
	org.SetQuery(soql, `{"totalSize":1,"done":true,"records":[
		{"attributes":{"type":"Account"},"Name":"Acme","NumberOfEmployees":9007199254740993,
		 "Owner":{"attributes":{"type":"User"},"Title":"CEO","Email":"ceo@acme.example"}}]}`)
	client := salesforce.NewClient(org.Options())
	defer client.Close()

	res, err := client.Query(context.Background(), soql)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	employees, ok := res.Records[0].Get("NumberOfEmployees")
	require.True(t, ok)
	assert.Equal(t, json.Number("9007199254740993"), employees)

	owner, ok := res.Records[0].Get("Owner")
	require.True(t, ok)
	nested, ok := owner.(salesforce.Record)
	require.True(t, ok, "nested object decoded as %T", owner)

	var keys []string
	for pair := nested.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"attributes", "Title", "Email"}, keys)
}

func TestClient_QueryChildSubquery(t *testing.T) {
	org := sftest.NewOrg(t)
	client := salesforce.NewClient(org.Options())
	defer client.Close()

	res, err := client.Query(context.Background(), sftest.QueryChildContacts)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	contacts, ok := res.Records[0].Get("Contacts")
	require.True(t, ok)
	child, ok := contacts.(salesforce.Record)
	require.True(t, ok)

	records, ok := child.Get("records")
	require.True(t, ok)
	list, ok := records.([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	_, ok = list[0].(salesforce.Record)
	assert.True(t, ok, "child records are ordered maps")
}

func TestClient_MalformedQuery(t *testing.T) {
	org := sftest.NewOrg(t)
	client := salesforce.NewClient(org.Options())

	_, err := client.Query(context.Background(), "SELECT * FROM Account")

	var apiErr *salesforce.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "MALFORMED_QUERY", apiErr.ErrorCode)
	assert.Equal(t, "unexpected token: 'Account'", apiErr.Message)
}

func TestClient_ExpiredSessionIsDroppedNotRetried(t *testing.T) {
	org := sftest.NewOrg(t)
	client := salesforce.NewClient(org.Options())
	ctx := context.Background()

	_, err := client.DescribeGlobal(ctx)
	require.NoError(t, err)

	org.ExpireSession()
	_, err = client.DescribeGlobal(ctx)
	var apiErr *salesforce.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsUnauthorized())
	assert.Equal(t, 1, org.Logins(), "the failing call is not retried")

	_, err = client.DescribeGlobal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, org.Logins(), "the next call logs in again")
}

func TestClient_InstanceURLOverride(t *testing.T) {
	org := sftest.NewOrg(t)
	opts := org.Options()
	opts.InstanceURL = "http://127.0.0.1:1" // nothing listens here

	_, err := salesforce.NewClient(opts).DescribeGlobal(context.Background())
	require.Error(t, err)

	var apiErr *salesforce.APIError
	var loginErr *salesforce.LoginError
	assert.False(t, errors.As(err, &apiErr))
	assert.False(t, errors.As(err, &loginErr))
}

func TestAPIError_Error(t *testing.T) {
	err := &salesforce.APIError{StatusCode: 400, ErrorCode: "INVALID_FIELD", Message: "No such column 'Foo'"}
	assert.Equal(t, "salesforce 400 INVALID_FIELD: No such column 'Foo'", err.Error())
}
