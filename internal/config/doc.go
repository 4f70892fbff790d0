// Package config provides engine configuration for the debugger.
//
// Configuration is loaded from a TOML file with NETCOREDBG_* environment
// variables layered on top, and can be watched for live reload so a running
// session can pick up changed evaluation deadlines without a restart.
package config
