// Package config provides configuration management for lantern.
//
// Configuration is loaded from multiple YAML sources and merged in order,
// with later sources overriding earlier ones:
//
//  1. Default configuration (built into the binary)
//  2. User configuration (~/.config/lantern/config.yaml)
//  3. Project configuration (./.lantern/config.yaml)
//
// A single file passed with --config replaces layers 2 and 3.
//
// # Configuration Structure
//
//	globalSettings:
//	  logLevel: info
//
//	display:
//	  name: "Hall lantern"
//	  initialDirection: north
//	  slot: viewGroup
//	  planesFile: /var/lib/lantern/planes.yaml
//
//	server:              # display HTTP API used by companions
//	  host: 0.0.0.0
//	  port: 8090
//
//	mcp:                 # MCP tools for agents, off by default
//	  enabled: true
//	  port: 8091
//
//	companion:
//	  endpoints: ["http://hall.local:8090", "http://kitchen.local:8090"]
//	  probeTimeout: 2s
//	  retries: 2
//	  rescanInterval: 5s
//
//	planes:
//	  north: {type: calendar, settings: {timezone: Europe/London}}
//	  up:    {type: clock, settings: {format: 24h}}
//	  east:  {type: message, settings: {text: "Hello"}}
//
// Scalar values in a later layer override earlier ones when set. The
// planes and companion.endpoints collections are replaced as a whole.
//
// Planes edited at runtime are persisted to display.planesFile, or
// planes.yaml next to the user configuration. That file, when present,
// takes precedence over the planes section.
package config
