// Package config loads runtime configuration for the taskkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the taskkeeper server
//	-f string   file to keep the session token in ("" keeps it in memory only)
//	-i int      online status check interval (seconds)
//	-t int      request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_url": "http://localhost:3001",
//	  "token_file": "/home/me/.taskkeeper-token",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s"
//	}
package config
