// Package config provides configuration management for sfmcp.
//
// Configuration is loaded from several sources and merged in order, with later
// sources overriding earlier ones:
//
//  1. Default configuration (embedded in binary)
//  2. User configuration (~/.config/sfmcp/config.yaml)
//  3. Project configuration (./.sfmcp/config.yaml), or a single file given
//     with --config instead of the user and project layers
//  4. A .env file in the working directory (only fills variables that are not
//     already set in the process environment)
//  5. Environment variables
//
// # Configuration Structure
//
//	salesforce:
//	  username: "user@example.com"
//	  password: "${SF_PASSWORD}"
//	  securityToken: "${SF_TOKEN}"
//	  domain: "login"        # "test" for sandboxes, or a My Domain prefix
//	  apiVersion: "59.0"
//	  clientId: ""           # set clientId/clientSecret to use OAuth instead of SOAP login
//	  clientSecret: ""
//	  timeout: 60s
//	server:
//	  transport: "stdio"     # or "sse"
//	  host: "localhost"
//	  port: 8090
//	metrics:
//	  enabled: false
//	  addr: "127.0.0.1:9090"
//	logging:
//	  level: "info"
//	  format: "text"
//	  file: ""
//
// # Environment Variables
//
// SALESFORCE_USERNAME, SALESFORCE_PASSWORD and SALESFORCE_SECURITY_TOKEN are
// required unless present in a config file. SALESFORCE_DOMAIN,
// SALESFORCE_API_VERSION, SALESFORCE_INSTANCE_URL, SALESFORCE_CLIENT_ID and
// SALESFORCE_CLIENT_SECRET are optional.
//
// String values in YAML files support environment variable expansion,
// including defaults:
//
//	password: "${SF_PASSWORD}"
//	domain: "${SF_DOMAIN:-login}"
package config
