// Package bridge reads and writes ros_gz_bridge topic configuration files.
//
// The planner only passes the file path to the bridge node; this package lets
// the CLI show, validate and export the configuration that path points at.
package bridge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Direction of a bridged topic.
type Direction string

const (
	RosToGz       Direction = "ROS_TO_GZ"
	GzToRos       Direction = "GZ_TO_ROS"
	Bidirectional Direction = "BIDIRECTIONAL"
)

// Topic is one entry of a bridge configuration.
// TopicName sets both sides when the names match.
type Topic struct {
	TopicName       string    `yaml:"topic_name,omitempty" json:"topic_name,omitempty"`
	ROSTopic        string    `yaml:"ros_topic_name,omitempty" json:"ros_topic_name,omitempty"`
	GZTopic         string    `yaml:"gz_topic_name,omitempty" json:"gz_topic_name,omitempty"`
	ROSType         string    `yaml:"ros_type_name" json:"ros_type_name"`
	GZType          string    `yaml:"gz_type_name" json:"gz_type_name"`
	Direction       Direction `yaml:"direction,omitempty" json:"direction,omitempty"`
	Lazy            bool      `yaml:"lazy,omitempty" json:"lazy,omitempty"`
	SubscriberQueue int       `yaml:"subscriber_queue,omitempty" json:"subscriber_queue,omitempty"`
	PublisherQueue  int       `yaml:"publisher_queue,omitempty" json:"publisher_queue,omitempty"`
}

// ROS returns the ROS side topic name.
func (t Topic) ROS() string {
	if t.ROSTopic != "" {
		return t.ROSTopic
	}
	return t.TopicName
}

// GZ returns the simulator side topic name.
func (t Topic) GZ() string {
	if t.GZTopic != "" {
		return t.GZTopic
	}
	return t.TopicName
}

// Config is an ordered list of bridged topics.
type Config []Topic

//go:embed kobuki_bridge.yaml
var kobukiDefault []byte

// KobukiDefault returns the configuration shipped for the Kobuki simulation.
func KobukiDefault() Config {
	cfg, err := Parse(kobukiDefault)
	if err != nil {
		panic(fmt.Sprintf("embedded kobuki bridge config: %v", err))
	}
	return cfg
}

// Load reads and validates a configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bridge config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse bridge config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every entry. All problems are reported together.
func (c Config) Validate() error {
	var errs []error
	seen := make(map[string]bool)
	for i, t := range c {
		if t.TopicName != "" && (t.ROSTopic != "" || t.GZTopic != "") {
			errs = append(errs, fmt.Errorf("entry %d: topic_name excludes ros_topic_name/gz_topic_name", i))
		}
		if t.ROS() == "" || t.GZ() == "" {
			errs = append(errs, fmt.Errorf("entry %d: both topic names are required", i))
		}
		if t.ROSType == "" || t.GZType == "" {
			errs = append(errs, fmt.Errorf("entry %d: both type names are required", i))
		}
		switch t.Direction {
		case "", RosToGz, GzToRos, Bidirectional:
		default:
			errs = append(errs, fmt.Errorf("entry %d: invalid direction %q", i, t.Direction))
		}
		key := strings.TrimPrefix(t.ROS(), "/") + "|" + string(t.Direction)
		if t.ROS() != "" && seen[key] {
			errs = append(errs, fmt.Errorf("entry %d: topic %q bridged twice", i, t.ROS()))
		}
		seen[key] = true
	}
	return errors.Join(errs...)
}

// Marshal encodes the configuration in the ros_gz_bridge YAML format.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Topics returns the ROS side names, in file order.
func (c Config) Topics() []string {
	out := make([]string, 0, len(c))
	for _, t := range c {
		out = append(out, t.ROS())
	}
	return out
}
