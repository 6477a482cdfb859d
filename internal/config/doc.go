// Package config loads the dialog bridge's startup configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/dialogs/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing or empty, use defaults
//
// # Fields
//
//	home_dir          = "~"                                   # picker start directory
//	log_file          = "~/.local/state/dialogs/dialogs.log"
//	log_level         = "info"                                # debug, info, warn, error
//	tick_ms           = 150                                   # idle refresh period
//	queue_capacity    = 256                                   # negative means unbounded
//	metrics_addr      = ""                                    # e.g. "127.0.0.1:9464"
//	interface_switch  = "skins2"
//	discovery_modules = ["sap", "upnp", "shout"]
//
// Paths starting with ~ are expanded against the user's home directory and
// made absolute. String values are trimmed. An explicitly empty
// discovery_modules list disables module toggles.
//
// Command-line flags are applied on top of the loaded Config by the caller;
// this package only reads the file.
package config
