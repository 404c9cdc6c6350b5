// Package xacro builds macro invocations for the xacro template engine and
// expands robot description templates through a ports.TemplateEngine.
package xacro

import (
	"strings"

	"github.com/aretw0/launchplan/pkg/domain"
)

// Program is the template engine executable.
const Program = "xacro"

// Mapping is one "key:=value" macro substitution.
type Mapping struct {
	Key   string
	Value string
}

// String renders the mapping as a command line token.
func (m Mapping) String() string {
	return m.Key + ":=" + m.Value
}

// Command is a complete macro invocation. Its token order is fixed at
// construction and determines the string handed to the engine.
type Command struct {
	Program  string
	Template string
	Mappings []Mapping
}

// MacroCommand builds the invocation for templatePath with one mapping per key,
// in the order given. Every key must be resolved.
func MacroCommand(templatePath string, resolved domain.Lookup, keys []string) (Command, error) {
	cmd := Command{
		Program:  Program,
		Template: templatePath,
		Mappings: make([]Mapping, 0, len(keys)),
	}
	for _, k := range keys {
		v, err := resolved.Get(k)
		if err != nil {
			return Command{}, err
		}
		cmd.Mappings = append(cmd.Mappings, Mapping{Key: k, Value: v})
	}
	return cmd, nil
}

// Argv returns the invocation as discrete arguments, program first.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Mappings)+2)
	argv = append(argv, c.Program, c.Template)
	for _, m := range c.Mappings {
		argv = append(argv, m.String())
	}
	return argv
}

// String joins Argv with single spaces:
//
//	xacro /share/kobuki_description/urdf/kobuki.urdf.xacro lidar:=true camera:=false
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}
