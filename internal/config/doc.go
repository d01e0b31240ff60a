// Package config provides the ulist tool configuration.
//
// Configuration is resolved in layers, higher layers overriding lower:
//
//	┌──────────────────────────────┐
//	│  3. Environment (ULIST_*)    │  ← Highest priority
//	├──────────────────────────────┤
//	│  2. Config file (TOML/YAML)  │
//	├──────────────────────────────┤
//	│  1. Built-in defaults        │  ← Lowest priority
//	└──────────────────────────────┘
//
// Command line flags are applied by the caller on the returned Config.
//
// # Files
//
// The file format follows the extension: .toml files are decoded with
// go-toml and may use "@include"; .yaml and .yml files with yaml.v3.
// A missing file is not an error.
//
//	[list]
//	nodeCapacity = 16
//	allocator = "pool"
//
//	[log]
//	level = "debug"
//	format = "json"
//
// # Environment
//
// ULIST_LIST_NODE_CAPACITY maps to list.nodeCapacity, ULIST_LOG_LEVEL to
// log.level, and so on. ULIST_CAPACITY and ULIST_ALLOCATOR are short
// aliases for the list settings.
package config
