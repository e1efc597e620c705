package app

import (
	"sfmcp/internal/adapter"
	"sfmcp/internal/mcpserver"
	"sfmcp/internal/metrics"
	"sfmcp/internal/salesforce"
	"sfmcp/pkg/logging"
)

// Services holds all the initialized services
type Services struct {
	Client  *salesforce.Client
	Adapter *adapter.Adapter
	Metrics *metrics.Recorder
	Server  *mcpserver.Server
}

// InitializeServices creates the Salesforce client and everything built on it.
// cfg.Settings must be loaded.
func InitializeServices(cfg *Config) (*Services, error) {
	sf := cfg.Settings.Salesforce

	client := salesforce.NewClient(salesforce.Options{
		Username:      sf.Username,
		Password:      sf.Password,
		SecurityToken: sf.SecurityToken,
		Domain:        sf.Domain,
		InstanceURL:   sf.InstanceURL,
		APIVersion:    sf.APIVersion,
		ClientID:      sf.ClientID,
		ClientSecret:  sf.ClientSecret,
		Timeout:       sf.Timeout,
	})

	auth := "SOAP login"
	if sf.UsesOAuth() {
		auth = "OAuth password flow"
	}
	logging.Info("Bootstrap", "Salesforce client ready for %s (domain %s, API v%s, %s)",
		sf.Username, sf.Domain, sf.APIVersion, auth)

	var recorder *metrics.Recorder
	if cfg.Settings.Metrics.IsEnabled() {
		recorder = metrics.NewRecorder()
	}

	sfAdapter := adapter.New(client)
	server := mcpserver.New(mcpserver.Config{
		Name:    "sfmcp",
		Version: cfg.Version,
		Host:    cfg.Settings.Server.Host,
		Port:    cfg.Settings.Server.Port,
	}, sfAdapter, recorder)

	return &Services{
		Client:  client,
		Adapter: sfAdapter,
		Metrics: recorder,
		Server:  server,
	}, nil
}

// Close disposes of the Salesforce client.
func (s *Services) Close() error {
	if s.Client == nil {
		return nil
	}
	return s.Client.Close()
}
