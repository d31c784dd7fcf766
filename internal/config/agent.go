package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentName         = "COUNSEL_AGENT_NAME"
	EnvAgentProviderName = "COUNSEL_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "COUNSEL_AGENT_BASE_URL"
	EnvAgentToken        = "COUNSEL_AGENT_TOKEN"
	EnvAgentDeployment   = "COUNSEL_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "COUNSEL_AGENT_API_VERSION"
	EnvAgentAuthType     = "COUNSEL_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "COUNSEL_AGENT_MODEL_NAME"
)

// FinalizeAgent fills a go-agents AgentConfig from go-agents defaults, then
// COUNSEL_AGENT_* variables, then validates it.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	defaults := gaconfig.DefaultAgentConfig()
	defaults.Merge(c)
	*c = defaults

	if c.Provider == nil {
		c.Provider = &gaconfig.ProviderConfig{}
	}
	if c.Provider.Options == nil {
		c.Provider.Options = make(map[string]any)
	}
	if c.Model == nil {
		c.Model = &gaconfig.ModelConfig{}
	}

	setString(EnvAgentName, &c.Name)
	setString(EnvAgentProviderName, &c.Provider.Name)
	setString(EnvAgentBaseURL, &c.Provider.BaseURL)
	setString(EnvAgentModelName, &c.Model.Name)

	for env, key := range map[string]string{
		EnvAgentToken:      "token",
		EnvAgentDeployment: "deployment",
		EnvAgentAPIVersion: "api_version",
		EnvAgentAuthType:   "auth_type",
	} {
		if v := os.Getenv(env); v != "" {
			c.Provider.Options[key] = v
		}
	}

	switch {
	case c.Name == "":
		return fmt.Errorf("name required")
	case c.Provider.Name == "":
		return fmt.Errorf("provider name required")
	}
	return nil
}

func setString(env string, dst *string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
