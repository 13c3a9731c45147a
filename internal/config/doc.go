// Package config loads pipeline configuration from the environment and from
// local and global YAML files. It is internal; CLI code merges flags, env and
// files into engine and report settings.
package config
