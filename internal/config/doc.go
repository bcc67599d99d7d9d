// Package config holds runtime configuration for seoscan.
//
// Configuration comes from three sources, in increasing precedence:
// built-in defaults, the optional .seoscan YAML file, and CLI flags.
// The resulting Config struct is passed through the application via
// dependency injection; there is no global configuration state.
package config
