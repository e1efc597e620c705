package salesforce

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// Session is an authenticated REST session.
type Session struct {
	InstanceURL string
	AccessToken string
}

// authenticator establishes a new Session.
type authenticator interface {
	login(ctx context.Context) (*Session, error)
}

// soapLogin uses the partner SOAP API login call, which only needs the
// username, password and security token.
type soapLogin struct {
	httpClient *http.Client
	loginURL   string
	apiVersion string
	username   string
	password   string
	token      string
}

const soapLoginBody = `<?xml version="1.0" encoding="utf-8" ?>
<env:Envelope
        xmlns:xsd="http://www.w3.org/2001/XMLSchema"
        xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
        xmlns:env="http://schemas.xmlsoap.org/soap/envelope/"
        xmlns:urn="urn:partner.soap.sforce.com">
    <env:Header>
        <urn:CallOptions>
            <urn:client>sfmcp</urn:client>
        </urn:CallOptions>
    </env:Header>
    <env:Body>
        <n1:login xmlns:n1="urn:partner.soap.sforce.com">
            <n1:username>%s</n1:username>
            <n1:password>%s</n1:password>
        </n1:login>
    </env:Body>
</env:Envelope>`

type soapEnvelope struct {
	Body struct {
		LoginResponse struct {
			Result struct {
				ServerURL string `xml:"serverUrl"`
				SessionID string `xml:"sessionId"`
			} `xml:"result"`
		} `xml:"loginResponse"`
		Fault struct {
			Code   string `xml:"faultcode"`
			String string `xml:"faultstring"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

func xmlEscape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func (s *soapLogin) login(ctx context.Context) (*Session, error) {
	body := fmt.Sprintf(soapLoginBody, xmlEscape(s.username), xmlEscape(s.password+s.token))
	endpoint := fmt.Sprintf("%s/services/Soap/u/%s", s.loginURL, s.apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("login new request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=UTF-8")
	req.Header.Set("SOAPAction", "login")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("login read response: %w", err)
	}

	var env soapEnvelope
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &LoginError{Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))}
		}
		return nil, fmt.Errorf("login decode response: %w", err)
	}

	if fault := env.Body.Fault; fault.String != "" {
		code, msg, found := strings.Cut(fault.String, ": ")
		if !found {
			return nil, &LoginError{Code: fault.Code, Message: fault.String}
		}
		return nil, &LoginError{Code: code, Message: msg}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &LoginError{Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}
	}

	result := env.Body.LoginResponse.Result
	if result.SessionID == "" || result.ServerURL == "" {
		return nil, &LoginError{Message: "login response did not contain a session"}
	}

	instance, err := instanceFromServerURL(result.ServerURL)
	if err != nil {
		return nil, err
	}
	return &Session{InstanceURL: instance, AccessToken: result.SessionID}, nil
}

// instanceFromServerURL reduces a SOAP serverUrl to scheme://host.
func instanceFromServerURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid serverUrl %q in login response", serverURL)
	}
	return u.Scheme + "://" + u.Host, nil
}

// oauthLogin uses the OAuth 2.0 username-password flow of a connected app.
type oauthLogin struct {
	httpClient *http.Client
	config     *oauth2.Config
	username   string
	password   string
	token      string
}

func newOAuthLogin(httpClient *http.Client, loginURL, clientID, clientSecret, username, password, token string) *oauthLogin {
	return &oauthLogin{
		httpClient: httpClient,
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  loginURL + "/services/oauth2/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		username: username,
		password: password,
		token:    token,
	}
}

func (o *oauthLogin) login(ctx context.Context) (*Session, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)

	tok, err := o.config.PasswordCredentialsToken(ctx, o.username, o.password+o.token)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			msg := retrieveErr.ErrorDescription
			if msg == "" {
				msg = strings.TrimSpace(string(retrieveErr.Body))
			}
			return nil, &LoginError{Code: retrieveErr.ErrorCode, Message: msg}
		}
		return nil, fmt.Errorf("oauth token request: %w", err)
	}

	instance, _ := tok.Extra("instance_url").(string)
	if instance == "" {
		return nil, &LoginError{Message: "token response did not contain instance_url"}
	}
	return &Session{InstanceURL: strings.TrimRight(instance, "/"), AccessToken: tok.AccessToken}, nil
}
