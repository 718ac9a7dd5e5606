// Package config loads bot configuration from YAML files.
//
// Defaults are applied before unmarshalling, so a partial file only
// overrides the fields it mentions.
package config
