package config

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug           = "debug"
	ConfigConfigFile      = "config"
	ConfigGenaiProvider   = "genai-provider"
	ConfigGeminiApiKey    = "gemini-api-key"
	ConfigGeminiModel     = "gemini-model"
	ConfigOpenaiApiKey    = "openai-api-key"
	ConfigOpenaiModel     = "openai-model"
	ConfigDeepseekApiKey  = "deepseek-api-key"
	ConfigDeepseekModel   = "deepseek-model"
	ConfigGenaiTimeout    = "genai-timeout"
	ConfigGenaiRetries    = "genai-retries"
	ConfigGenaiRetryDelay = "genai-retry-delay"
	ConfigMaxReprompts    = "max-reprompts"
	ConfigHistoryPath     = "history-path"
	ConfigNatsURL         = "nats-url"
	ConfigNatsSubject     = "nats-subject"
)

// Config wraps a viper instance. Values come, in increasing priority, from
// defaults, an optional config file, MORRIS_* environment variables and
// command-line flags.
type Config struct {
	*viper.Viper

	args []string
}

// DefaultConfig returns a config holding only defaults and environment
// variables. Call Load to also read flags and a config file.
func DefaultConfig() *Config {
	c := &Config{Viper: viper.New()}
	c.setDefaults()
	return c
}

func (c *Config) setDefaults() {
	c.SetEnvPrefix("morris")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigGenaiProvider, "gemini")
	c.SetDefault(ConfigGeminiModel, "gemini-2.0-flash")
	c.SetDefault(ConfigOpenaiModel, "gpt-4.1")
	c.SetDefault(ConfigDeepseekModel, "deepseek-chat")
	c.SetDefault(ConfigGenaiTimeout, 30*time.Second)
	c.SetDefault(ConfigGenaiRetries, 3)
	c.SetDefault(ConfigGenaiRetryDelay, 5*time.Second)
	c.SetDefault(ConfigMaxReprompts, 2)
	c.SetDefault(ConfigHistoryPath, "")
	c.SetDefault(ConfigNatsURL, "nats://localhost:4222")
	c.SetDefault(ConfigNatsSubject, "morris.bot")

	// Provider SDKs document these unprefixed names, so accept them too.
	c.BindEnv(ConfigGeminiApiKey, "MORRIS_GEMINI_API_KEY", "GEMINI_API_KEY")
	c.BindEnv(ConfigOpenaiApiKey, "MORRIS_OPENAI_API_KEY", "OPENAI_API_KEY")
	c.BindEnv(ConfigDeepseekApiKey, "MORRIS_DEEPSEEK_API_KEY", "DEEPSEEK_API_KEY")
}

// Load parses command-line arguments (without the program name) and reads
// the config file if one was named.
func (c *Config) Load(args []string) error {
	c.Viper = viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("morrisbot", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.String(ConfigConfigFile, "", "path to a yaml/json/toml config file")
	fs.String(ConfigGenaiProvider, "gemini", "gemini, openai or deepseek")
	fs.String(ConfigGeminiModel, "gemini-2.0-flash", "gemini model name")
	fs.String(ConfigOpenaiModel, "gpt-4.1", "openai model name")
	fs.String(ConfigDeepseekModel, "deepseek-chat", "deepseek model name")
	fs.Duration(ConfigGenaiTimeout, 30*time.Second, "timeout for a single model request")
	fs.Int(ConfigGenaiRetries, 3, "attempts per move request, including the first")
	fs.Duration(ConfigGenaiRetryDelay, 5*time.Second, "base delay between attempts")
	fs.Int(ConfigMaxReprompts, 2, "correction prompts sent when a reply holds no move")
	fs.String(ConfigHistoryPath, "", "sqlite file recording every exchange; empty disables")
	fs.String(ConfigNatsURL, "nats://localhost:4222", "NATS server url")
	fs.String(ConfigNatsSubject, "morris.bot", "NATS subject to answer move requests on")
	if err := fs.Parse(args); err != nil {
		return err
	}
	c.args = fs.Args()
	// Only explicitly set flags override the environment; BindPFlags takes
	// care of that by checking Changed.
	if err := c.BindPFlags(fs); err != nil {
		return err
	}
	if path := c.GetString(ConfigConfigFile); path != "" {
		c.SetConfigFile(path)
		if err := c.ReadInConfig(); err != nil {
			return err
		}
	}
	return nil
}

// Args returns the positional arguments left over by Load.
func (c *Config) Args() []string {
	return c.args
}

// APIKey returns the credential configured for provider.
func (c *Config) APIKey(provider string) string {
	switch provider {
	case "gemini":
		return c.GetString(ConfigGeminiApiKey)
	case "openai":
		return c.GetString(ConfigOpenaiApiKey)
	case "deepseek":
		return c.GetString(ConfigDeepseekApiKey)
	}
	return ""
}

// Model returns the model configured for provider.
func (c *Config) Model(provider string) string {
	switch provider {
	case "gemini":
		return c.GetString(ConfigGeminiModel)
	case "openai":
		return c.GetString(ConfigOpenaiModel)
	case "deepseek":
		return c.GetString(ConfigDeepseekModel)
	}
	return ""
}
