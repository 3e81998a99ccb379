package human

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Interval is a time.Duration that is read from YAML either
// as a duration string ("1m30s") or as an integer number of seconds.
type Interval time.Duration

func (s *Interval) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("interval: scalar expected, got %v at line %d", node.Tag, node.Line)
	}

	if secs, err := strconv.ParseInt(node.Value, 10, 64); err == nil {
		*s = Interval(time.Duration(secs) * time.Second)
		return nil
	}

	v, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("interval: %w", err)
	}

	*s = Interval(v)
	return nil
}

func (s Interval) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

func (s Interval) Value() time.Duration {
	return time.Duration(s)
}

func MustParseInterval(s string) Interval {
	v, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return Interval(v)
}

func (s Interval) String() string {
	return time.Duration(s).String()
}
