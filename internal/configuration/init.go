package configuration

import (
	"fmt"

	"github.com/markusressel/fan2bmc/internal/util"
	"gopkg.in/yaml.v3"
)

// DefaultConfigYaml renders the default configuration as YAML
func DefaultConfigYaml() ([]byte, error) {
	defaults := DefaultConfiguration()

	// durations are written in their human readable form, e.g. "5s"
	document := map[string]interface{}{}
	raw, err := yaml.Marshal(defaults)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &document); err != nil {
		return nil, err
	}
	setDuration(document, "sampling", "interval", defaults.Sampling.Interval.String())
	setDuration(document, "sampling", "stopTimeout", defaults.Sampling.StopTimeout.String())
	setDuration(document, "sensors", "serviceGracePeriod", defaults.Sensors.ServiceGracePeriod.String())
	setDuration(document, "ipmi", "timeout", defaults.Ipmi.Timeout.String())

	return yaml.Marshal(document)
}

func setDuration(document map[string]interface{}, section string, key string, value string) {
	if m, ok := document[section].(map[string]interface{}); ok {
		m[key] = value
	}
}

// WriteDefaultConfig writes the default configuration to path, it refuses to overwrite an existing file
func WriteDefaultConfig(path string) error {
	if err := util.CheckFileExists(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	data, err := DefaultConfigYaml()
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(path, data)
}
