package templates

import (
	"os"
	"time"

	"emperror.dev/errors"
	"github.com/AlekSi/pointer"
	"gopkg.in/yaml.v3"
)

// fileTemplate is the YAML shape of a user-supplied template. Optional
// fields are pointers so absent values fall back to catalog defaults.
type fileTemplate struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Emoji       string   `yaml:"emoji"`
	Description string   `yaml:"description"`
	Question    string   `yaml:"question"`
	Options     []string `yaml:"options"`

	DefaultDurationMinutes *int  `yaml:"defaultDurationMinutes"`
	Quick                  *bool `yaml:"quick"`

	Schedule *fileSchedule `yaml:"schedule"`
}

type fileSchedule struct {
	Weekday  int    `yaml:"weekday"`
	Hour     int    `yaml:"hour"`
	Minute   int    `yaml:"minute"`
	Timezone string `yaml:"timezone"`
}

type templateFile struct {
	Templates []fileTemplate `yaml:"templates"`
}

// LoadFile merges templates from a YAML file over the built-in catalog.
// File templates can only carry static option lists.
func (r *Registry) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapIf(err, "failed reading template file")
	}

	var parsed templateFile
	err = yaml.Unmarshal(raw, &parsed)
	if err != nil {
		return errors.WrapIf(err, "failed parsing template file")
	}

	for _, ft := range parsed.Templates {
		if len(ft.Options) == 0 {
			return errors.Errorf("template %q has no options", ft.Key)
		}

		t := &Template{
			Key:             ft.Key,
			Name:            ft.Name,
			Emoji:           ft.Emoji,
			Description:     ft.Description,
			Question:        ft.Question,
			Source:          StaticOptions(ft.Options),
			DefaultDuration: pointer.GetInt(ft.DefaultDurationMinutes),
			Quick:           pointer.GetBool(ft.Quick),
		}
		if t.DefaultDuration <= 0 {
			t.DefaultDuration = DefaultDuration
		}
		if ft.Schedule != nil {
			t.Schedule = &Schedule{
				Weekday:  time.Weekday(ft.Schedule.Weekday),
				Hour:     ft.Schedule.Hour,
				Minute:   ft.Schedule.Minute,
				Timezone: ft.Schedule.Timezone,
			}
		}

		err = r.Register(t)
		if err != nil {
			return err
		}
	}

	return nil
}
