package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
)

const defaultModel = "gemini-2.5-flash"

// BaseConfig provides common configuration loading for analyzer backends.
type BaseConfig struct {
	ConfigPath string
}

// LoadConfig loads configuration from a file, falling back to the default
// config directory and then to environment variables.
func (c *BaseConfig) LoadConfig(configPath, name string, config interface{}) error {
	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, config); err == nil {
				log.Infof("loaded %s analyzer configuration from %s", name, configPath)
				return nil
			}
		}
	}

	defaultPath := filepath.Join("config", fmt.Sprintf("%s.json", name))
	if data, err := os.ReadFile(defaultPath); err == nil {
		if err := json.Unmarshal(data, config); err == nil {
			log.Infof("loaded %s analyzer configuration from %s", name, defaultPath)
			return nil
		}
	}

	log.Infof("using environment variables for %s analyzer configuration", name)
	return nil
}

// VertexConfig holds configuration for the Vertex AI backend.
type VertexConfig struct {
	BaseConfig
	ProjectID       string `json:"project_id"`
	Location        string `json:"location"`
	CredentialsFile string `json:"credentials_file"`
	Model           string `json:"model"`
}

// Load loads the Vertex configuration.
func (c *VertexConfig) Load() error {
	if err := c.LoadConfig(c.ConfigPath, "vertex", c); err != nil {
		return err
	}

	if c.ProjectID == "" {
		c.ProjectID = os.Getenv("GOOGLE_PROJECT_ID")
	}
	if c.Location == "" {
		c.Location = os.Getenv("GOOGLE_LOCATION")
	}
	if c.CredentialsFile == "" {
		c.CredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
	}
	if c.Model == "" {
		c.Model = defaultModel
	}

	return nil
}

// RESTConfig holds configuration for the generativelanguage REST backend.
type RESTConfig struct {
	BaseConfig
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

// Load loads the REST configuration.
func (c *RESTConfig) Load() error {
	if err := c.LoadConfig(c.ConfigPath, "rest", c); err != nil {
		return err
	}

	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Model == "" {
		c.Model = os.Getenv("GEMINI_MODEL")
	}
	if c.Model == "" {
		c.Model = defaultModel
	}

	return nil
}
