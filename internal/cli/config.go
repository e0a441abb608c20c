package cli

import (
	"fmt"
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/sebasr/target-manager/internal/client"
	"github.com/sebasr/target-manager/internal/mockbackend"
)

// Config keys. Each is also read from TARGETS_<KEY> and ~/.targetctl.yaml.
const (
	keyAPIURL        = "api_url"
	keyUseMocks      = "use_mocks"
	keyTimeout       = "timeout"
	keyRetryMax      = "retry_max"
	keyLogLevel      = "log_level"
	keyOutput        = "output"
	keyMockSeedCount = "mock_seed_count"
)

// Output formats.
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// settings is the resolved client configuration.
type settings struct {
	APIURL        string
	UseMocks      bool
	Timeout       time.Duration
	RetryMax      int
	LogLevel      string
	Output        string
	MockSeedCount int
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TARGETS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyAPIURL, client.DefaultBaseURL)
	v.SetDefault(keyUseMocks, false)
	v.SetDefault(keyTimeout, client.DefaultTimeout)
	v.SetDefault(keyRetryMax, client.DefaultRetryMax)
	v.SetDefault(keyLogLevel, "warn")
	v.SetDefault(keyOutput, outputTable)
	v.SetDefault(keyMockSeedCount, mockbackend.DefaultSeedCount)
	return v
}

// readConfigFile loads cfgFile, or ~/.targetctl.yaml when empty. A missing
// default file is not an error.
func readConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
		return nil
	}

	home, err := homedir.Dir()
	if err != nil {
		return nil
	}
	v.AddConfigPath(home)
	v.SetConfigName(".targetctl")
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func loadSettings(v *viper.Viper) (settings, error) {
	s := settings{
		APIURL:        v.GetString(keyAPIURL),
		UseMocks:      v.GetBool(keyUseMocks),
		Timeout:       v.GetDuration(keyTimeout),
		RetryMax:      v.GetInt(keyRetryMax),
		LogLevel:      v.GetString(keyLogLevel),
		Output:        strings.ToLower(v.GetString(keyOutput)),
		MockSeedCount: v.GetInt(keyMockSeedCount),
	}

	switch s.Output {
	case outputTable, outputJSON, outputYAML:
	default:
		return settings{}, fmt.Errorf("unsupported output %q (want table, json or yaml)", s.Output)
	}
	if s.Timeout <= 0 {
		return settings{}, fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	if s.RetryMax < 0 {
		return settings{}, fmt.Errorf("retry_max must not be negative, got %d", s.RetryMax)
	}
	return s, nil
}
