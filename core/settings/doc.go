// Package settings loads aitask configuration and exposes the values the
// dispatcher consults on every call.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then environment variables (AITASK_*), with .env files loaded into the
// environment first. The resulting Settings is safe for concurrent use and
// lets the default provider per kind change at runtime.
//
//	mode: runtime
//	output_root: ./generated
//	default_provider: openai
//	default_providers:
//	  speech: elevenlabs
//	history:
//	  backend: sqlite
//	  dsn: ./aitask.db
package settings
