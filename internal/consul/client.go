// Package consul registers the platform's services with HashiCorp Consul
// so deployments can health-check and locate them.
package consul

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	consulapi "github.com/hashicorp/consul/api"
)

// Client wraps the Consul API client
type Client struct {
	api    *consulapi.Client
	logger *slog.Logger
}

// NewClient creates a new Consul client. An ACL token is optional.
func NewClient(addr, token string, logger *slog.Logger) (*Client, error) {
	config := consulapi.DefaultConfig()
	config.Address = addr
	if token != "" {
		config.Token = token
	}

	client, err := consulapi.NewClient(config)
	if err != nil {
		return nil, err
	}

	return &Client{api: client, logger: logger}, nil
}

// Registration describes a service instance to register
type Registration struct {
	ID      string
	Name    string
	Address string
	Port    int
	Tags    []string

	// HealthPath is polled over HTTP every 10s when set
	HealthPath string
}

// Register registers a service instance with Consul
func (c *Client) Register(reg Registration) error {
	svc := &consulapi.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: reg.Address,
		Port:    reg.Port,
		Tags:    reg.Tags,
	}

	if reg.HealthPath != "" {
		svc.Check = &consulapi.AgentServiceCheck{
			HTTP:     fmt.Sprintf("http://%s:%d%s", reg.Address, reg.Port, reg.HealthPath),
			Interval: "10s",
			Timeout:  "3s",
		}
	}

	if err := c.api.Agent().ServiceRegister(svc); err != nil {
		return fmt.Errorf("failed to register service %s: %w", reg.Name, err)
	}

	c.logger.Info("Registered service with Consul", "service", reg.Name, "id", reg.ID)
	return nil
}

// Deregister removes a service instance from Consul
func (c *Client) Deregister(serviceID string) error {
	if err := c.api.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister service %s: %w", serviceID, err)
	}

	c.logger.Info("Deregistered service from Consul", "id", serviceID)
	return nil
}

// RegisterFromEnv registers the named service using CONSUL_* and SERVICE_*
// environment variables. It returns a deregister func, or a no-op when
// CONSUL_ADDR is unset (local development without Consul).
func RegisterFromEnv(name string, port int, logger *slog.Logger) (func(), error) {
	addr := os.Getenv("CONSUL_ADDR")
	if addr == "" {
		return func() {}, nil
	}

	client, err := NewClient(addr, os.Getenv("CONSUL_TOKEN"), logger)
	if err != nil {
		return nil, err
	}

	serviceAddr := os.Getenv("SERVICE_ADDR")
	if serviceAddr == "" {
		serviceAddr = "localhost"
	}

	id := name + "-" + strconv.Itoa(port)
	err = client.Register(Registration{
		ID:         id,
		Name:       name,
		Address:    serviceAddr,
		Port:       port,
		Tags:       []string{"edusphere"},
		HealthPath: "/health",
	})
	if err != nil {
		return nil, err
	}

	return func() {
		if err := client.Deregister(id); err != nil {
			logger.Warn("Consul deregistration failed", "error", err.Error())
		}
	}, nil
}
