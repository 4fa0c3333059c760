// Package grid defines the format-agnostic task-graph model and the
// loaders that populate it from HCL or YAML definition files. The model is
// the single source of truth handed to the toposort engine and the
// executor; format-specific decoding never leaks past this package.
package grid
