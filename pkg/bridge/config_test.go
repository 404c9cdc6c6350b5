package bridge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKobukiDefault(t *testing.T) {
	cfg := KobukiDefault()
	require.NotEmpty(t, cfg)
	assert.NoError(t, cfg.Validate())
	assert.Contains(t, cfg.Topics(), "/clock")
	assert.Contains(t, cfg.Topics(), "cmd_vel")
}

func TestParse(t *testing.T) {
	doc := `
- topic_name: "/clock"
  ros_type_name: "rosgraph_msgs/msg/Clock"
  gz_type_name: "gz.msgs.Clock"
  direction: GZ_TO_ROS
- ros_topic_name: "cmd_vel"
  gz_topic_name: "/model/kobuki/cmd_vel"
  ros_type_name: "geometry_msgs/msg/Twist"
  gz_type_name: "gz.msgs.Twist"
  direction: ROS_TO_GZ
  publisher_queue: 10
`
	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, cfg, 2)
	assert.Equal(t, "/clock", cfg[0].ROS())
	assert.Equal(t, "/clock", cfg[0].GZ())
	assert.Equal(t, RosToGz, cfg[1].Direction)
	assert.Equal(t, 10, cfg[1].PublisherQueue)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"missing topic", Config{{ROSType: "a", GZType: "b"}}, "both topic names"},
		{"missing type", Config{{TopicName: "/x", ROSType: "a"}}, "both type names"},
		{"bad direction", Config{{TopicName: "/x", ROSType: "a", GZType: "b", Direction: "SIDEWAYS"}}, "invalid direction"},
		{"ambiguous names", Config{{TopicName: "/x", ROSTopic: "/y", GZTopic: "/z", ROSType: "a", GZType: "b"}}, "excludes"},
		{"duplicate", Config{
			{TopicName: "/x", ROSType: "a", GZType: "b"},
			{TopicName: "x", ROSType: "a", GZType: "b"},
		}, "bridged twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMarshal_Reloads(t *testing.T) {
	data, err := KobukiDefault().Marshal()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, KobukiDefault(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ros_topic_name: [unclosed"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
