/*
Package domain contains the core data model of the launch planner.

It defines plan definitions, node descriptors, resolved arguments and the error
kinds surfaced while building a plan. This package is kept pure and free of
external dependencies like I/O or process management.

# Key Entities

  - Argument / Resolved: declared configuration inputs and their final values.
  - NodeSpec / NodeDescriptor: the template of a node and its interpolated form.
  - Plan: an immutable, ordered sequence of declare/artifact/start/compose/include actions.
  - LaunchPlan: the resolved plan handed to the runtime.
*/
package domain
