/*
Package ports defines the driven ports (interfaces) of the launch planner.

The planner decides what to run; everything that actually touches the outside
world sits behind one of these interfaces.

# Key Interfaces

  - Catalog: locates plan definitions by name (Go code, Loam documents, memory).
  - TemplateEngine: expands a xacro macro invocation into a robot description.
  - ArtifactCache: stores expanded artifacts keyed by their macro invocation.
  - Runtime: receives a fully built LaunchPlan and starts its nodes.
*/
package ports
