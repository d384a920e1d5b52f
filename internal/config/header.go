package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/club-schedule-board/internal/application"
)

// LoadHeaderDefaults reads the club details used for the default board header from a
// YAML file. Fields left out of the file keep the built-in values.
func LoadHeaderDefaults(path string) (application.HeaderDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return application.HeaderDefaults{}, fmt.Errorf("không đọc được tệp tiêu đề %s: %w", path, err)
	}

	defaults := application.StandardHeaderDefaults()
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return application.HeaderDefaults{}, fmt.Errorf("tệp tiêu đề %s không hợp lệ: %w", path, err)
	}
	defaults.Logo = strings.TrimSpace(defaults.Logo)
	defaults.ScheduleTitle = strings.TrimSpace(defaults.ScheduleTitle)
	return defaults, nil
}
