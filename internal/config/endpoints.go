package config

import "strings"

// Endpoints are the base URLs of the backends the admin client talks to.
type Endpoints struct {
	Auth    string
	Sales   string
	Control string
}

var ProductionEndpoints = Endpoints{
	Auth:    "https://auth.dropux.co",
	Sales:   "https://sales.dropux.co",
	Control: "https://control.dropux.co",
}

var productionHosts = []string{
	"dropux.co",
	"www.dropux.co",
	"app.dropux.co",
	"admin.dropux.co",
}

// DevelopmentEndpoints returns the local defaults, overridable from the environment.
func DevelopmentEndpoints() Endpoints {
	return Endpoints{
		Auth:    getEnv("AUTH_API_URL", "http://localhost:8004"),
		Sales:   getEnv("SALES_API_URL", "http://localhost:8080"),
		Control: getEnv("CONTROL_API_URL", "http://localhost:8003"),
	}
}

// ResolveEndpoints picks the backend URLs for the host the client is served from.
// Production hostnames always get the production URLs.
func ResolveEndpoints(hostname string) Endpoints {
	if IsProductionHost(hostname) {
		return ProductionEndpoints
	}
	return DevelopmentEndpoints()
}

func IsProductionHost(hostname string) bool {
	host := strings.ToLower(strings.TrimSpace(hostname))
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	for _, h := range productionHosts {
		if host == h {
			return true
		}
	}
	return false
}
